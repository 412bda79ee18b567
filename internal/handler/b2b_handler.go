package handler

import (
	"sibos-pos/internal/model"
	"sibos-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

// B2BHandler serves the seller side of the network fulfillment protocol.
type B2BHandler struct {
	b2b service.B2BService
}

func NewB2BHandler(b2b service.B2BService) *B2BHandler {
	return &B2BHandler{b2b: b2b}
}

func (h *B2BHandler) ListIncoming(c *fiber.Ctx) error {
	outletID, err := getOutletID(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	reqs, err := h.b2b.ListIncoming(outletID, model.B2BStatus(c.Query("status")))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(reqs)
}

func (h *B2BHandler) GetRequest(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request ID"})
	}
	req, err := h.b2b.GetRequest(id)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "B2B request not found"})
	}
	return c.JSON(req)
}

func (h *B2BHandler) Accept(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request ID"})
	}
	actorID, err := getActorID(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid user ID"})
	}
	req, err := h.b2b.Accept(id, actorID)
	if err != nil {
		return c.Status(poErrorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "Request accepted", "data": req})
}

type negotiateBody struct {
	Lines []service.NegotiateLine `json:"lines"`
}

func (h *B2BHandler) Negotiate(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request ID"})
	}
	var body negotiateBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	actorID, err := getActorID(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid user ID"})
	}
	req, err := h.b2b.Negotiate(id, body.Lines, actorID)
	if err != nil {
		return c.Status(poErrorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "Lines updated", "data": req})
}

func (h *B2BHandler) Ship(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request ID"})
	}
	var p service.ShipParams
	if err := c.BodyParser(&p); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	actorID, err := getActorID(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid user ID"})
	}
	req, err := h.b2b.Ship(id, p, actorID)
	if err != nil {
		return c.Status(poErrorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "Shipment booked", "data": req})
}

type b2bRejectBody struct {
	Note string `json:"note"`
}

func (h *B2BHandler) Reject(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request ID"})
	}
	var body b2bRejectBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	actorID, err := getActorID(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid user ID"})
	}
	req, err := h.b2b.Reject(id, body.Note, actorID)
	if err != nil {
		return c.Status(poErrorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "Request rejected", "data": req})
}

type settleBody struct {
	Method model.PaymentMethod `json:"method"`
}

func (h *B2BHandler) SettlePayment(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request ID"})
	}
	var body settleBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	actorID, err := getActorID(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid user ID"})
	}
	req, err := h.b2b.SettlePayment(id, body.Method, actorID)
	if err != nil {
		return c.Status(poErrorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "Payment settled", "data": req})
}
