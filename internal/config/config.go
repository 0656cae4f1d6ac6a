package config

import (
	"fmt"
	"log"
	"os"
)

type Config struct {
	Port              string
	ConsulAddress     string
	ServiceName       string
	ServiceID         string
	ServiceAddress    string
	RabbitMQUser      string
	RabbitMQPassword  string
	RabbitMQHost      string
	RabbitMQPort      string
	JWTSecret         string
	AdminGroup        string
	DefaultVisibility string
}

func init() {
	ServiceConfig = New()
}

var ServiceConfig *Config

func New() *Config {
	return &Config{
		Port:              getEnv("PORT", "9140"),
		RabbitMQUser:      getEnv("RABBITMQ_USER", "guest"),
		RabbitMQPassword:  getEnv("RABBITMQ_PASSWORD", "guest"),
		RabbitMQHost:      getEnv("RABBITMQ_HOST", "rabbitmq"),
		RabbitMQPort:      getEnv("RABBITMQ_PORT", "5672"),
		ConsulAddress:     "consul-server:" + getEnv("CONSUL_PORT", "8500"),
		ServiceName:       getEnv("RECORD_ACCESS_SERVICE_NAME", "record-access-service"),
		ServiceID:         getEnv("RECORD_ACCESS_SERVICE_NAME", "record-access-service") + "-" + getEnv("RECORD_ACCESS_HOSTNAME", "1"),
		ServiceAddress:    getEnv("RECORD_ACCESS_SERVICE_ADDRESS", "record-access-service"),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		AdminGroup:        getEnv("ADMIN_GROUP", "administrators"),
		DefaultVisibility: getEnv("DEFAULT_VISIBILITY", "private"),
	}
}

func (c *Config) RabbitMQURI() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/", c.RabbitMQUser, c.RabbitMQPassword, c.RabbitMQHost, c.RabbitMQPort)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("Error Retriving ENV: %s not exist", key)
	return fallback
}
