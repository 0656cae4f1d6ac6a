package handlers

import (
	"log"
	"strings"

	"record_access_service/internal/access"
	"record_access_service/internal/models"
	"record_access_service/internal/repository"
	"record_access_service/internal/service"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type AccessHandler struct {
	accessService    *service.AccessService
	principalService *service.PrincipalService
}

func NewAccessHandler(accessService *service.AccessService, principalService *service.PrincipalService) *AccessHandler {
	return &AccessHandler{
		accessService:    accessService,
		principalService: principalService,
	}
}

func (h *AccessHandler) RegisterRoutes(app *fiber.App) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	recordGroup := app.Group("/protected/records")

	recordGroup.Get("/:recordId/permissions", h.GetPermissions)
	recordGroup.Get("/:recordId/permissions/access-level", h.GetAccessLevel)
	recordGroup.Post("/:recordId/permissions/check", h.CheckAccess)

	recordGroup.Put("/:recordId/permissions/owner", h.SetOwner)
	recordGroup.Get("/:recordId/permissions/collaborators", h.GetCollaborators)
	recordGroup.Put("/:recordId/permissions/collaborators", h.SetCollaborators)
	recordGroup.Post("/:recordId/permissions/collaborators", h.AddCollaborator)
	recordGroup.Delete("/:recordId/permissions/collaborators/:principal", h.RemoveCollaborator)

	recordGroup.Get("/:recordId/permissions/visibility", h.GetVisibility)
	recordGroup.Put("/:recordId/permissions/visibility", h.SetVisibility)

	recordGroup.Get("/:recordId/permissions/audit", h.GetAuditTrail)

	catalogGroup := app.Group("/protected/access")
	catalogGroup.Get("/levels", h.GetAccessLevels)
	catalogGroup.Get("/visibilities", h.GetVisibilities)
	catalogGroup.Get("/visibilities/:name/records", h.GetRecordsByVisibility)
	catalogGroup.Get("/guest-reachable/records", h.GetGuestReachableRecords)
}

// requester extracts the current principal from the gateway headers, falling
// back to the bearer token. An empty result is the unauthenticated guest.
func (h *AccessHandler) requester(c fiber.Ctx) string {
	if userID := c.Get("X-User-ID"); userID != "" {
		return userID
	}

	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	tokenString := authHeader
	if strings.HasPrefix(authHeader, "Bearer ") {
		tokenString = authHeader[7:]
	}
	claims, err := h.principalService.ValidateToken(tokenString)
	if err != nil {
		log.Printf("Token validation failed: %v", err)
		return ""
	}
	return claims.Id
}

type collaboratorView struct {
	Principal string `json:"principal"`
	Level     string `json:"level"`
	Type      string `json:"type"`
}

func collaboratorViews(collaborators []*access.Collaborator) []collaboratorView {
	views := make([]collaboratorView, 0, len(collaborators))
	for _, c := range collaborators {
		views = append(views, collaboratorView{
			Principal: c.Principal,
			Level:     c.Level.Name,
			Type:      string(c.Type),
		})
	}
	return views
}

func (h *AccessHandler) GetPermissions(c fiber.Ctx) error {
	recordID := c.Params("recordId")
	requester := h.requester(c)

	entity := h.accessService.Entity(recordID, requester)
	owner := h.accessService.GetOwner(c.Context(), recordID)
	if owner == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Record not found",
		})
	}

	visibility := entity.GetVisibility(c.Context())
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"recordId":      recordID,
			"owner":         owner.Principal,
			"ownerType":     string(owner.Type(c.Context())),
			"guestOwned":    owner.IsGuest(),
			"visibility":    visibility.Name,
			"collaborators": collaboratorViews(h.accessService.GetCollaborators(c.Context(), recordID)),
			"accessLevel":   h.accessService.EffectiveLevel(c.Context(), recordID, requester).Name,
		},
	})
}

func (h *AccessHandler) GetAccessLevel(c fiber.Ctx) error {
	recordID := c.Params("recordId")
	requester := h.requester(c)

	principal := c.Query("principal")
	var level *access.AccessLevel
	if principal == "" {
		level = h.accessService.EffectiveLevel(c.Context(), recordID, requester)
	} else {
		level = h.accessService.EffectiveLevelFor(c.Context(), recordID, requester, principal)
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"recordId": recordID,
			"level":    level.Name,
			"label":    level.Label,
		},
	})
}

func (h *AccessHandler) CheckAccess(c fiber.Ctx) error {
	recordID := c.Params("recordId")

	var req struct {
		Principal string `json:"principal"`
		Right     string `json:"right"`
	}
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	decision := h.accessService.CheckAccess(c.Context(), req.Principal, access.Right(req.Right), recordID)
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"recordId":  recordID,
			"principal": req.Principal,
			"right":     req.Right,
			"decision":  decision.String(),
		},
	})
}

func (h *AccessHandler) SetOwner(c fiber.Ctx) error {
	recordID := c.Params("recordId")
	requester := h.requester(c)

	var req struct {
		Owner string `json:"owner"`
	}
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	log.Printf("User %s transferring ownership of record %s to %s", requester, recordID, req.Owner)

	if !h.accessService.SetOwner(c.Context(), recordID, requester, req.Owner) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Ownership transfer refused",
		})
	}
	return c.JSON(fiber.Map{
		"message": "Owner updated",
	})
}

func (h *AccessHandler) GetCollaborators(c fiber.Ctx) error {
	recordID := c.Params("recordId")

	return c.JSON(fiber.Map{
		"data": collaboratorViews(h.accessService.GetCollaborators(c.Context(), recordID)),
	})
}

func (h *AccessHandler) SetCollaborators(c fiber.Ctx) error {
	recordID := c.Params("recordId")
	requester := h.requester(c)

	var req []struct {
		Principal string `json:"principal"`
		Level     string `json:"level"`
	}
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	collaborators := make([]*access.Collaborator, 0, len(req))
	for _, entry := range req {
		collaborators = append(collaborators, &access.Collaborator{
			Principal: entry.Principal,
			Level:     access.ResolveAccessLevel(entry.Level),
		})
	}

	if !h.accessService.SetCollaborators(c.Context(), recordID, requester, collaborators) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Collaborator update refused",
		})
	}
	return c.JSON(fiber.Map{
		"message": "Collaborators updated",
	})
}

func (h *AccessHandler) AddCollaborator(c fiber.Ctx) error {
	recordID := c.Params("recordId")
	requester := h.requester(c)

	var req struct {
		Principal string `json:"principal"`
		Level     string `json:"level"`
	}
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Principal == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Principal is required",
		})
	}

	if !h.accessService.AddCollaborator(c.Context(), recordID, requester, req.Principal, req.Level) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Collaborator grant refused",
		})
	}
	return c.JSON(fiber.Map{
		"message": "Collaborator added",
	})
}

func (h *AccessHandler) RemoveCollaborator(c fiber.Ctx) error {
	recordID := c.Params("recordId")
	requester := h.requester(c)
	principal := c.Params("principal")

	if !h.accessService.RemoveCollaborator(c.Context(), recordID, requester, principal) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Collaborator removal refused",
		})
	}
	return c.JSON(fiber.Map{
		"message": "Collaborator removed",
	})
}

func (h *AccessHandler) GetVisibility(c fiber.Ctx) error {
	recordID := c.Params("recordId")

	visibility := h.accessService.GetVisibility(c.Context(), recordID)
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"recordId":   recordID,
			"visibility": visibility.Name,
			"label":      visibility.Label,
		},
	})
}

func (h *AccessHandler) SetVisibility(c fiber.Ctx) error {
	recordID := c.Params("recordId")
	requester := h.requester(c)

	var req struct {
		Visibility string `json:"visibility"`
	}
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if !h.accessService.SetVisibility(c.Context(), recordID, requester, req.Visibility) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Visibility change refused",
		})
	}
	return c.JSON(fiber.Map{
		"message": "Visibility updated",
	})
}

func (h *AccessHandler) GetAuditTrail(c fiber.Ctx) error {
	recordID := c.Params("recordId")
	requester := h.requester(c)

	page := fiber.Query(c, "page", 1)
	limit := fiber.Query(c, "limit", 20)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	entries, ok := h.accessService.AuditTrail(c.Context(), recordID, requester, page, limit)
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "You don't have permission to view the audit trail",
		})
	}
	return c.JSON(fiber.Map{
		"data": entries,
	})
}

func (h *AccessHandler) GetAccessLevels(c fiber.Ctx) error {
	assignableOnly := c.Query("assignable") == "true"

	levels := access.AllAccessLevels()
	if assignableOnly {
		levels = access.AssignableAccessLevels()
	}

	views := make([]fiber.Map, 0, len(levels))
	for _, level := range levels {
		views = append(views, fiber.Map{
			"name":  level.Name,
			"label": level.Label,
		})
	}
	return c.JSON(fiber.Map{
		"data": views,
	})
}

func (h *AccessHandler) GetVisibilities(c fiber.Ctx) error {
	assignableOnly := c.Query("assignable") == "true"

	views := make([]fiber.Map, 0)
	for _, v := range h.accessService.ListVisibilities(assignableOnly) {
		views = append(views, fiber.Map{
			"name":         v.Name,
			"label":        v.Label,
			"priority":     v.Priority,
			"defaultLevel": v.DefaultLevel.Name,
		})
	}
	return c.JSON(fiber.Map{
		"data": views,
	})
}

func (h *AccessHandler) GetRecordsByVisibility(c fiber.Ctx) error {
	userPermissions := c.Get("X-User-Permissions")

	// Listing records across the site is an administrative view.
	hasPermission := false
	if userPermissions != "" {
		permissions := strings.SplitSeq(userPermissions, ",")
		for perm := range permissions {
			if strings.HasPrefix(strings.TrimSpace(perm), "admin") {
				hasPermission = true
				break
			}
		}
	}
	if !hasPermission {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "You don't have permission to list records",
		})
	}

	name := c.Params("name")
	ids := h.accessService.RecordsWithVisibility(c.Context(), name)
	return c.JSON(fiber.Map{
		"data": ids,
	})
}

func (h *AccessHandler) GetGuestReachableRecords(c fiber.Ctx) error {
	page := fiber.Query(c, "page", 1)
	limit := fiber.Query(c, "limit", 20)

	ids, err := h.accessService.GuestReachableRecords(c.Context(), page, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list records",
		})
	}
	return c.JSON(fiber.Map{
		"data": ids,
	})
}

// SettingsHandler exposes the site-wide access configuration.
type SettingsHandler struct {
	settingsRepo *repository.SettingsRepository
}

func NewSettingsHandler() *SettingsHandler {
	return &SettingsHandler{
		settingsRepo: repository.Repositories_instance.SettingsRepository,
	}
}

func (h *SettingsHandler) RegisterRoutes(app *fiber.App) {
	settingsGroup := app.Group("/protected/access/settings")
	settingsGroup.Get("/", h.GetSettings)
	settingsGroup.Put("/", h.UpdateSettings)
}

func (h *SettingsHandler) GetSettings(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"defaultVisibility": h.settingsRepo.DefaultVisibility(),
		},
	})
}

func (h *SettingsHandler) UpdateSettings(c fiber.Ctx) error {
	userID := c.Get("X-User-ID")
	userPermissions := c.Get("X-User-Permissions")

	hasPermission := false
	if userPermissions != "" {
		permissions := strings.SplitSeq(userPermissions, ",")
		for perm := range permissions {
			if strings.HasPrefix(strings.TrimSpace(perm), "admin") {
				hasPermission = true
				break
			}
		}
	}
	if !hasPermission {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "You don't have permission to change site settings",
		})
	}

	var req models.SiteSettings
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	log.Printf("User %s updating site access settings", userID)

	if err := h.settingsRepo.Update(c.Context(), &req); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"message": "Settings updated",
	})
}
