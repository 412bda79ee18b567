package handler

import (
	"sibos-pos/internal/model"
	"sibos-pos/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// POSHandler serves the register flow: cart sessions and checkout.
type POSHandler struct {
	cart service.CartService
}

func NewPOSHandler(cart service.CartService) *POSHandler {
	return &POSHandler{cart: cart}
}

type createSessionRequest struct {
	Type    model.OrderType `json:"type"`
	Channel model.Channel   `json:"channel"`
}

func (h *POSHandler) CreateSession(c *fiber.Ctx) error {
	outletID, err := getOutletID(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	var req createSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	sess, err := h.cart.CreateSession(outletID, req.Type, req.Channel)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(201).JSON(sess)
}

func (h *POSHandler) GetSession(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid session ID"})
	}
	sess, err := h.cart.GetSession(id)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(sess)
}

type addItemRequest struct {
	ProductID uuid.UUID  `json:"product_id"`
	VariantID *uuid.UUID `json:"variant_id"`
	Quantity  float64    `json:"quantity"`
	Note      string     `json:"note"`
}

func (h *POSHandler) AddItem(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid session ID"})
	}
	var req addItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	sess, err := h.cart.AddItem(id, req.ProductID, req.VariantID, req.Quantity, req.Note)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(sess)
}

type addCustomItemRequest struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity float64         `json:"quantity"`
	Note     string          `json:"note"`
}

func (h *POSHandler) AddCustomItem(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid session ID"})
	}
	var req addCustomItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	sess, err := h.cart.AddCustomItem(id, req.Name, req.Price, req.Quantity, req.Note)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(sess)
}

type updateLineRequest struct {
	Quantity float64 `json:"quantity"`
}

func (h *POSHandler) UpdateLine(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid session ID"})
	}
	lineID, err := parseUUID(c.Params("lineId"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid line ID"})
	}
	var req updateLineRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	sess, err := h.cart.UpdateQuantity(id, lineID, req.Quantity)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(sess)
}

func (h *POSHandler) RemoveLine(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid session ID"})
	}
	lineID, err := parseUUID(c.Params("lineId"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid line ID"})
	}
	sess, err := h.cart.RemoveLine(id, lineID)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(sess)
}

type setCustomerRequest struct {
	CustomerID *uuid.UUID `json:"customer_id"`
}

func (h *POSHandler) SetCustomer(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid session ID"})
	}
	var req setCustomerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	sess, err := h.cart.SetCustomer(id, req.CustomerID)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(sess)
}

func (h *POSHandler) Checkout(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid session ID"})
	}
	var req service.CheckoutParams
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	order, err := h.cart.Checkout(id, req, getUserID(c))
	if err != nil {
		switch err {
		case model.ErrShiftRequired:
			return c.Status(409).JSON(fiber.Map{"error": err.Error()})
		case model.ErrCustomerRequired:
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(201).JSON(fiber.Map{"message": "Checkout complete", "data": order})
}
