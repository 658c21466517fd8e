package controller

import (
	"io"
	"strconv"

	"doc-intelligence-be/internal/dto"
	"doc-intelligence-be/internal/metrics"
	"doc-intelligence-be/internal/pkg/serverutils"
	"doc-intelligence-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
	Upload(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Status(ctx *fiber.Ctx) error
	Process(ctx *fiber.Ctx) error
}

type documentController struct {
	documentService service.IDocumentService
	metrics         *metrics.Metrics
	serviceName     string
}

func NewDocumentController(documentService service.IDocumentService, m *metrics.Metrics, serviceName string) IDocumentController {
	return &documentController{
		documentService: documentService,
		metrics:         m,
		serviceName:     serviceName,
	}
}

func (c *documentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/documents/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("upload", c.Upload)
	h.Post("process", c.Process)
	h.Get("", c.List)
	h.Get(":id", c.Show)
	h.Get(":id/status", c.Status)
}

func (c *documentController) Upload(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		c.metrics.RecordUpload(c.serviceName, "rejected")
		return serverutils.NewBadRequestError("missing file field in multipart form")
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.metrics.RecordUpload(c.serviceName, "error")
		return err
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		c.metrics.RecordUpload(c.serviceName, "error")
		return err
	}

	mimeType := fileHeader.Header.Get("Content-Type")

	opts := dto.UploadOptions{
		ExtractionType: ctx.FormValue("extraction_type"),
		Language:       ctx.FormValue("language"),
	}
	if raw := ctx.FormValue("confidence_threshold"); raw != "" {
		threshold, err := strconv.ParseFloat(raw, 64)
		if err != nil || threshold < 0 || threshold > 1 {
			c.metrics.RecordUpload(c.serviceName, "rejected")
			return serverutils.NewBadRequestError("confidence_threshold must be a number between 0 and 1")
		}
		opts.ConfidenceThreshold = threshold
	}

	res, err := c.documentService.Upload(ctx.Context(), userId, fileHeader.Filename, mimeType, content, opts)
	if err != nil {
		c.metrics.RecordUpload(c.serviceName, "rejected")
		return err
	}

	c.metrics.RecordUpload(c.serviceName, "accepted")
	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Document uploaded", res))
}

func (c *documentController) List(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	limit := ctx.QueryInt("limit", 20)
	offset := ctx.QueryInt("offset", 0)

	res, err := c.documentService.List(ctx.Context(), userId, limit, offset)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list documents", res))
}

func (c *documentController) Show(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return serverutils.NewBadRequestError("invalid document id")
	}

	res, err := c.documentService.Show(ctx.Context(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show document", res))
}

func (c *documentController) Status(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return serverutils.NewBadRequestError("invalid document id")
	}

	res, err := c.documentService.GetStatus(ctx.Context(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show status", res))
}

func (c *documentController) Process(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.ProcessDocumentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.documentService.Process(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Processing requested", res))
}
