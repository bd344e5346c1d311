package web

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/google/uuid"

	"bubbleview/internal/domain"
	"bubbleview/internal/usecases"
	"bubbleview/pkg/log"
	"bubbleview/templates/pages"
)

// Handlers contains the HTTP handlers for the web application.
type Handlers struct {
	bubbles  *usecases.GetBubbleUseCase
	view     *usecases.ViewBubbleUseCase
	create   *usecases.CreateBubbleUseCase
	sessions *Sessions
	metrics  *Metrics
	timeout  time.Duration
}

// NewHandlers creates a new Handlers instance. metrics may be nil.
func NewHandlers(
	bubbles *usecases.GetBubbleUseCase,
	view *usecases.ViewBubbleUseCase,
	create *usecases.CreateBubbleUseCase,
	sessions *Sessions,
	metrics *Metrics,
) *Handlers {
	return &Handlers{
		bubbles:  bubbles,
		view:     view,
		create:   create,
		sessions: sessions,
		metrics:  metrics,
		timeout:  30 * time.Second,
	}
}

// render is a helper to render templ components.
func render(c *fiber.Ctx, component templ.Component, opts ...func(*templ.ComponentHandler)) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return adaptor.HTTPHandler(templ.Handler(component, opts...))(c)
}

func (h *Handlers) withTimeout(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.UserContext(), h.timeout)
}

// Home renders the landing page.
func (h *Handlers) Home(c *fiber.Ctx) error {
	return render(c, pages.Home())
}

// Open redirects the home form's ?slug= to the bubble page.
func (h *Handlers) Open(c *fiber.Ctx) error {
	slug := strings.TrimSpace(c.Query("slug"))
	if !domain.ValidSlug(slug) {
		return domain.ErrInvalidSlug
	}
	return c.Redirect("/b/"+slug, fiber.StatusSeeOther)
}

// ViewBubble renders the bubble page with ?selected= selected.
func (h *Handlers) ViewBubble(c *fiber.Ctx) error {
	ctx, cancel := h.withTimeout(c)
	defer cancel()

	view, err := h.view.Execute(ctx, c.Params("slug"), c.Query("selected"))
	if err != nil {
		log.GlobalWarnCtx(ctx, "view bubble failed", "error", err)
		return err
	}
	h.recordView(view)

	return render(c, pages.Bubble(view.Bubble.Slug, view.Bubble.CreatedBy, view.Items, view.Preview))
}

// APIGetBubble returns the view of a bubble as JSON.
func (h *Handlers) APIGetBubble(c *fiber.Ctx) error {
	ctx, cancel := h.withTimeout(c)
	defer cancel()

	view, err := h.view.Execute(ctx, c.Params("slug"), c.Query("selected"))
	if err != nil {
		log.GlobalWarnCtx(ctx, "api get bubble failed", "error", err)
		return err
	}
	h.recordView(view)

	return c.JSON(newViewResponse(view))
}

// APICreateBubble stores a new bubble composed of text and attachment parts.
func (h *Handlers) APICreateBubble(c *fiber.Ctx) error {
	ctx, cancel := h.withTimeout(c)
	defer cancel()

	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "The request body isn't valid JSON.")
	}
	parts, err := req.toParts()
	if err != nil {
		return err
	}

	created, err := h.create.Execute(ctx, parts, req.author())
	if err != nil {
		log.GlobalWarnCtx(ctx, "create bubble failed", "error", err)
		return err
	}
	h.metrics.bubbleCreated()

	c.Location(created.ShareURL)
	return c.Status(fiber.StatusCreated).JSON(createResponse{
		Slug:     created.Slug,
		ShareURL: created.ShareURL,
	})
}

// APISelect moves the viewer session's selection to an attachment, by id
// or by position for swipe navigation. A missing X-Session-ID starts a
// new session; the id is echoed back in the same header.
func (h *Handlers) APISelect(c *fiber.Ctx) error {
	ctx, cancel := h.withTimeout(c)
	defer cancel()

	var req selectRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "The request body isn't valid JSON.")
	}

	bubble, err := h.bubbles.Execute(ctx, c.Params("slug"))
	if err != nil {
		return err
	}

	sessionID := strings.TrimSpace(c.Get(HeaderSessionID))
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	c.Set(HeaderSessionID, sessionID)

	ctrl := h.sessions.Controller(sessionID, bubble.Slug, bubble.SelectableIDs())
	var ok bool
	if req.Index != nil {
		ok = ctrl.SelectIndex(*req.Index)
	} else {
		ok = ctrl.Select(req.ID)
	}
	if !ok {
		h.metrics.selection("rejected")
		return fiber.NewError(fiber.StatusUnprocessableEntity, "That attachment isn't part of this bubble.")
	}
	h.metrics.selection("accepted")

	snap := ctrl.Current()
	view := h.view.Present(ctx, bubble, snap.Selected, snap.DisplayState())
	return c.JSON(selectionResponse{
		SessionID: sessionID,
		Snapshot:  snap,
		Preview:   view.Preview,
	})
}

// APISelection returns the viewer session's current selection.
func (h *Handlers) APISelection(c *fiber.Ctx) error {
	sessionID := strings.TrimSpace(c.Get(HeaderSessionID))
	ctrl, ok := h.sessions.Lookup(sessionID, c.Params("slug"))
	if sessionID == "" || !ok {
		return fiber.NewError(fiber.StatusNotFound, "There is no selection for this session yet.")
	}
	return c.JSON(selectionResponse{
		SessionID: sessionID,
		Snapshot:  ctrl.Current(),
	})
}

// ErrorHandler renders errors as JSON under /api and as an error page
// everywhere else.
func (h *Handlers) ErrorHandler(c *fiber.Ctx, err error) error {
	status, msg := h.friendlyError(err)
	if status >= fiber.StatusInternalServerError {
		log.GlobalErrorCtx(c.UserContext(), "request failed", "path", c.Path(), "error", err)
	}
	if strings.HasPrefix(c.Path(), "/api/") {
		return c.Status(status).JSON(errorResponse{Error: msg})
	}
	c.Status(status)
	return render(c, pages.Error(msg), templ.WithStatus(status))
}

func (h *Handlers) recordView(view *usecases.View) {
	strategy := "NONE"
	if view.Preview != nil {
		strategy = view.Preview.Strategy.String()
	}
	h.metrics.bubbleViewed(strategy)
}

// friendlyError returns a status and a neutral, non-blaming message.
func (h *Handlers) friendlyError(err error) (int, string) {
	var ferr *fiber.Error
	switch {
	case errors.Is(err, domain.ErrBubbleNotFound):
		return fiber.StatusNotFound, "This bubble couldn't be found. It might have been removed."
	case errors.Is(err, domain.ErrInvalidSlug):
		return fiber.StatusBadRequest, "That doesn't look like a bubble link. Check the share code and try again."
	case errors.Is(err, domain.ErrRateLimited):
		return fiber.StatusTooManyRequests, "Too many requests. Please wait a moment and try again."
	case errors.Is(err, domain.ErrEmptyBubble):
		return fiber.StatusBadRequest, "A bubble needs some text or at least one attachment."
	case errors.Is(err, domain.ErrUnknownKind):
		return fiber.StatusBadRequest, "One of the attachments has a kind we don't know."
	case errors.Is(err, domain.ErrFetchFailed):
		return fiber.StatusBadGateway, "Unable to load this bubble right now. Please try again in a moment."
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout, "Loading this bubble took too long. Please try again in a moment."
	case errors.As(err, &ferr):
		if ferr.Code == fiber.StatusNotFound && strings.HasPrefix(ferr.Message, "Cannot ") {
			return ferr.Code, "There's nothing here."
		}
		return ferr.Code, ferr.Message
	default:
		return fiber.StatusInternalServerError, "Something went wrong on our side. Please try again in a moment."
	}
}
