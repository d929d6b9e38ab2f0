package garden

import (
	"encoding/json"
	"errors"
	"io"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
)

// Handler exposes the core operations over HTTP. All logic stays in the
// repository, engines and services; handlers only translate.
type Handler struct {
	repo     *Repository
	forecast *ForecastEngine
	care     *CareEngine
	photos   *PhotoService
	codec    *Codec
	log      zerolog.Logger
}

func NewHandler(repo *Repository, forecast *ForecastEngine, care *CareEngine, photos *PhotoService, codec *Codec, log zerolog.Logger) *Handler {
	return &Handler{
		repo:     repo,
		forecast: forecast,
		care:     care,
		photos:   photos,
		codec:    codec,
		log:      log,
	}
}

func RegisterRoutes(router fiber.Router, h *Handler) {
	plants := router.Group("/plants")
	plants.Get("/", h.ListPlants)
	plants.Post("/", h.CreatePlant)
	plants.Get("/:id", h.GetPlant)
	plants.Patch("/:id", h.PatchPlant)
	plants.Delete("/:id", h.DeletePlant)
	plants.Get("/:id/events", h.PlantEvents)
	plants.Get("/:id/forecast", h.PlantForecast)
	plants.Get("/:id/care-status", h.PlantCareStatus)
	plants.Get("/:id/photos", h.PlantPhotos)
	plants.Get("/:id/photos/main", h.PlantMainPhoto)
	plants.Post("/:id/photos", h.UploadPhoto)

	beds := router.Group("/beds")
	beds.Get("/:id/plants", h.BedPlants)
	beds.Post("/:id/plants", h.AddPlantToBed)

	events := router.Group("/events")
	events.Post("/", h.CreateEvent)
	events.Patch("/:id", h.PatchEvent)
	events.Delete("/:id", h.DeleteEvent)

	settings := router.Group("/settings")
	settings.Get("/:key", h.GetSetting)
	settings.Put("/:key", h.PutSetting)

	photos := router.Group("/photos")
	photos.Post("/:id/main", h.SetMainPhoto)
	photos.Delete("/:id", h.DeletePhoto)

	router.Get("/export", h.Export)
	router.Post("/import", h.Import)
}

func parseID(c fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	return uint(id), nil
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrPhotoLimit):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrImageDecode), errors.Is(err, ErrImageEncode):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}

// ListPlants returns all plants, filtered when ?q= is present.
func (h *Handler) ListPlants(c fiber.Ctx) error {
	plants, err := h.repo.AllPlants(c.Context())
	if err != nil {
		return httpError(err)
	}
	if q := c.Query("q"); q != "" {
		plants = FilterPlants(plants, q)
	}
	return c.JSON(plants)
}

func (h *Handler) CreatePlant(c fiber.Ctx) error {
	plant := new(Plant)
	if err := c.Bind().JSON(plant); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	id, err := h.repo.AddPlant(c.Context(), plant)
	if err != nil {
		return httpError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}

func (h *Handler) GetPlant(c fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	plant, err := h.repo.Plant(c.Context(), id)
	if err != nil {
		return httpError(err)
	}
	if plant == nil {
		return fiber.NewError(fiber.StatusNotFound, "plant not found")
	}
	return c.JSON(plant)
}

func (h *Handler) PatchPlant(c fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	patch := map[string]any{}
	if err := c.Bind().JSON(&patch); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := h.repo.UpdatePlant(c.Context(), id, patch); err != nil {
		return httpError(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) DeletePlant(c fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.repo.DeletePlant(c.Context(), id); err != nil {
		return httpError(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) PlantEvents(c fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	events, err := h.repo.EventsForPlant(c.Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(events)
}

func (h *Handler) PlantForecast(c fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	forecast, err := h.forecast.NextSpray(c.Context(), id)
	if err != nil {
		return httpError(err)
	}
	if forecast == nil {
		// no plant or no spray schedule for its type
		return c.JSON(nil)
	}
	return c.JSON(forecast)
}

func (h *Handler) PlantCareStatus(c fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	status, err := h.care.Status(c.Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(fiber.Map{"status": status})
}

func (h *Handler) PlantPhotos(c fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	photos, err := h.repo.PhotosForPlant(c.Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(photos)
}

// PlantMainPhoto serves the main image bytes directly.
func (h *Handler) PlantMainPhoto(c fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	photo, err := h.repo.MainPhotoForPlant(c.Context(), id)
	if err != nil {
		return httpError(err)
	}
	if photo == nil {
		return fiber.NewError(fiber.StatusNotFound, "no photos for plant")
	}
	c.Set(fiber.HeaderContentType, photo.ContentType)
	return c.Send(photo.Data)
}

// UploadPhoto accepts a multipart "photo" part, or the raw request body.
func (h *Handler) UploadPhoto(c fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	input := c.Body()
	if file, err := c.FormFile("photo"); err == nil {
		f, err := file.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		defer f.Close()
		buf, err := io.ReadAll(f)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		input = buf
	}

	photo, err := h.photos.AddPhoto(c.Context(), id, input)
	if err != nil {
		h.log.Warn().Err(err).Uint("plant_id", id).Msg("photo upload rejected")
		return httpError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(photo)
}

func (h *Handler) BedPlants(c fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	plants, err := h.repo.PlantsInBed(c.Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(plants)
}

func (h *Handler) AddPlantToBed(c fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	plant := new(Plant)
	if err := c.Bind().JSON(plant); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	plantID, err := h.repo.AddPlantToBed(c.Context(), id, plant)
	if err != nil {
		return httpError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": plantID})
}

func (h *Handler) CreateEvent(c fiber.Ctx) error {
	event := new(Event)
	if err := c.Bind().JSON(event); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	id, err := h.repo.AddEvent(c.Context(), event)
	if err != nil {
		return httpError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}

func (h *Handler) PatchEvent(c fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	patch := map[string]any{}
	if err := c.Bind().JSON(&patch); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := h.repo.UpdateEvent(c.Context(), id, patch); err != nil {
		return httpError(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) DeleteEvent(c fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.repo.DeleteEvent(c.Context(), id); err != nil {
		return httpError(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) GetSetting(c fiber.Ctx) error {
	key := c.Params("key")
	value, err := h.repo.Setting(c.Context(), key, nil)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(fiber.Map{"key": key, "value": value})
}

func (h *Handler) PutSetting(c fiber.Ctx) error {
	key := c.Params("key")
	body := c.Body()
	if !json.Valid(body) {
		return fiber.NewError(fiber.StatusBadRequest, "value must be valid JSON")
	}
	if err := h.repo.PutSetting(c.Context(), key, datatypes.JSON(body)); err != nil {
		return httpError(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) SetMainPhoto(c fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.photos.SetMainPhoto(c.Context(), id); err != nil {
		return httpError(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) DeletePhoto(c fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.photos.DeletePhoto(c.Context(), id); err != nil {
		return httpError(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) Export(c fiber.Ctx) error {
	doc, err := h.codec.Export(c.Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(doc)
}

func (h *Handler) Import(c fiber.Ctx) error {
	doc := new(ExportDocument)
	if err := c.Bind().JSON(doc); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := h.codec.Import(c.Context(), doc); err != nil {
		h.log.Error().Err(err).Msg("import rolled back")
		return httpError(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
