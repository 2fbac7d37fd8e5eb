package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/colisync/internal/config"
	"github.com/example/colisync/internal/draft"
	"github.com/example/colisync/internal/middleware"
	"github.com/example/colisync/internal/models"
	"github.com/example/colisync/internal/utils"
)

// ReservationHandler manages booking submission and read endpoints.
type ReservationHandler struct {
	db  *gorm.DB
	cfg *config.Config
}

// NewReservationHandler constructs ReservationHandler.
func NewReservationHandler(db *gorm.DB, cfg *config.Config) *ReservationHandler {
	return &ReservationHandler{db: db, cfg: cfg}
}

// Create accepts the wizard's multipart bundle: a "payload" part holding the
// JSON draft document and zero or more package_<i>_image file parts keyed by
// list position. Images are stored under an opaque generated filename and
// only the relative path is persisted.
func (h *ReservationHandler) Create(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Utilisateur non authentifié")
	}

	form, err := c.MultipartForm()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Requête multipart invalide")
	}

	payload, err := payloadPart(form)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "La partie payload est requise")
	}

	var d draft.Draft
	if err := json.Unmarshal(payload, &d); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Format JSON invalide dans la requête")
	}

	if len(d.Packages) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "Veuillez ajouter au moins un colis.")
	}

	shippingDate, err := time.Parse("2006-01-02", d.Localization.ShippingDate)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "La date d'envoi est invalide.")
	}

	reservation := models.Reservation{
		UserID: userID,
		DepartureLocation: models.Location{
			City:           d.Localization.Departure.City,
			District:       d.Localization.Departure.District,
			PreciseAddress: d.Localization.Departure.PreciseAddress,
		},
		ArrivalLocation: models.Location{
			City:           d.Localization.Destination.City,
			District:       d.Localization.Destination.District,
			PreciseAddress: d.Localization.Destination.PreciseAddress,
		},
		SenderName:      d.Contact.SenderName,
		SenderPhone:     d.Contact.SenderPhone,
		RecipientName:   d.Contact.RecipientName,
		RecipientPhone:  d.Contact.RecipientPhone,
		NotifyRecipient: d.Contact.NotifyRecipient,
		AdditionalInfo:  d.Contact.AdditionalInstructions,
		ShippingDate:    shippingDate,
		Status:          models.StatusPending,
	}

	for i, item := range d.Packages {
		pkg := models.Package{
			SenderID:    userID,
			Description: item.Description,
			Quantity:    item.Quantity,
			Weight:      item.Weight,
			Category:    item.Category,
		}

		if files := form.File[draft.ImagePartName(i)]; len(files) > 0 {
			storedPath, err := h.storeImage(c, files[0])
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Impossible d'enregistrer l'image du colis")
			}
			pkg.ImagePath = storedPath
		}

		reservation.Packages = append(reservation.Packages, pkg)
	}

	if err := h.db.Create(&reservation).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"id":            reservation.ID,
			"status":        reservation.Status,
			"shipping_date": reservation.ShippingDate,
			"packages":      len(reservation.Packages),
		},
	})
}

// List returns the caller's reservations, newest first.
func (h *ReservationHandler) List(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Utilisateur non authentifié")
	}

	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Reservation{}).Where("user_id = ?", userID)

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var reservations []models.Reservation
	if err := query.Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&reservations).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"reservations": reservations,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

type detailsRequest struct {
	ID string `json:"id"`
}

// Details returns one reservation with its packages. The identifier shape
// is checked before querying, and a reservation belonging to another user
// answers 403, not 404.
func (h *ReservationHandler) Details(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Utilisateur non authentifié")
	}

	var req detailsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Format JSON invalide dans la requête")
	}

	if req.ID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "ID de réservation requis")
	}

	id, err := uuid.Parse(req.ID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Format d'ID de réservation invalide")
	}

	var reservation models.Reservation
	err = h.db.Preload("Packages", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at asc")
	}).First(&reservation, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Réservation non trouvée")
		}
		return err
	}

	if reservation.UserID != userID {
		return fiber.NewError(fiber.StatusForbidden, "Accès non autorisé à cette réservation")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    reservation,
	})
}

// Dashboard returns per-status reservation counters for the caller.
func (h *ReservationHandler) Dashboard(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Utilisateur non authentifié")
	}

	type statusCount struct {
		Status string
		Count  int64
	}

	var rows []statusCount
	if err := h.db.Model(&models.Reservation{}).
		Select("status, count(*) as count").
		Where("user_id = ?", userID).
		Group("status").
		Scan(&rows).Error; err != nil {
		return err
	}

	counters := fiber.Map{
		models.StatusPending:   int64(0),
		models.StatusConfirmed: int64(0),
		models.StatusInTransit: int64(0),
		models.StatusDelivered: int64(0),
		models.StatusCancelled: int64(0),
	}
	var total int64
	for _, row := range rows {
		counters[row.Status] = row.Count
		total += row.Count
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"total":     total,
			"by_status": counters,
		},
	})
}

// payloadPart extracts the JSON document from the bundle. Clients may send
// it as a plain form value or as a file-flavored part; both are accepted.
func payloadPart(form *multipart.Form) ([]byte, error) {
	if values := form.Value["payload"]; len(values) > 0 {
		return []byte(values[0]), nil
	}

	if files := form.File["payload"]; len(files) > 0 {
		f, err := files[0].Open()
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return io.ReadAll(f)
	}

	return nil, errors.New("missing payload part")
}

// storeImage saves an uploaded image under a freshly generated opaque
// filename and returns the relative path that gets persisted.
func (h *ReservationHandler) storeImage(c *fiber.Ctx, file *multipart.FileHeader) (string, error) {
	ext := filepath.Ext(file.Filename)
	name := uuid.New().String() + ext
	target := filepath.Join(h.cfg.UploadDir, name)

	if err := c.SaveFile(file, target); err != nil {
		return "", err
	}

	return filepath.ToSlash(target), nil
}
