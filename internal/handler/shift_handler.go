package handler

import (
	"errors"
	"strconv"

	"sibos-pos/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ShiftHandler struct {
	shiftService service.ShiftService
}

func NewShiftHandler(shiftService service.ShiftService) *ShiftHandler {
	return &ShiftHandler{shiftService: shiftService}
}

type openShiftRequest struct {
	UserID      uuid.UUID       `json:"user_id"`
	OpeningCash decimal.Decimal `json:"opening_cash"`
}

// Open handles register opening
// POST /api/v1/shifts/open
func (h *ShiftHandler) Open(c *fiber.Ctx) error {
	outletID, err := getOutletID(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	var req openShiftRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	// Default: kasir yang login buka shift atas namanya sendiri
	userID := req.UserID
	if userID == uuid.Nil {
		userID, err = uuid.Parse(getUserID(c))
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
		}
	}

	shift, err := h.shiftService.Open(outletID, userID, req.OpeningCash, getUserID(c))
	if err != nil {
		if errors.Is(err, service.ErrShiftAlreadyOpen) {
			return c.Status(409).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(201).JSON(fiber.Map{
		"message": "Shift opened successfully",
		"data":    shift,
	})
}

type closeShiftRequest struct {
	ClosingCash decimal.Decimal `json:"closing_cash"`
	Note        string          `json:"note"`
}

// Close handles register closing with cash reconciliation
// POST /api/v1/shifts/:id/close
func (h *ShiftHandler) Close(c *fiber.Ctx) error {
	shiftID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid shift ID"})
	}

	var req closeShiftRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	shift, err := h.shiftService.Close(shiftID, req.ClosingCash, req.Note, getUserID(c))
	if err != nil {
		if errors.Is(err, service.ErrShiftNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": err.Error()})
		}
		if errors.Is(err, service.ErrShiftAlreadyClosed) {
			return c.Status(409).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"message": "Shift closed successfully",
		"data":    shift,
	})
}

// GetOpen returns the currently open shift for the outlet
// GET /api/v1/shifts/open
func (h *ShiftHandler) GetOpen(c *fiber.Ctx) error {
	outletID, err := getOutletID(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	shift, err := h.shiftService.GetOpen(outletID)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "No open shift for this outlet"})
	}

	return c.JSON(fiber.Map{"data": shift})
}

// GetShift handles getting a single shift by ID
// GET /api/v1/shifts/:id
func (h *ShiftHandler) GetShift(c *fiber.Ctx) error {
	shiftID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid shift ID"})
	}

	shift, err := h.shiftService.GetByID(shiftID)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Shift not found"})
	}

	return c.JSON(fiber.Map{"data": shift})
}

// GetShifts lists recent shifts for the outlet
// GET /api/v1/shifts?limit=20
func (h *ShiftHandler) GetShifts(c *fiber.Ctx) error {
	outletID, err := getOutletID(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	shifts, err := h.shiftService.ListRecent(outletID, limit)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"data":  shifts,
		"total": len(shifts),
	})
}
