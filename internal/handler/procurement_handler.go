package handler

import (
	"errors"

	"sibos-pos/internal/model"
	"sibos-pos/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ProcurementHandler serves the purchase order lifecycle, purchase
// requests, supplier ranking and auto-reorder.
type ProcurementHandler struct {
	procurement service.ProcurementService
	ranking     service.RankingService
}

func NewProcurementHandler(procurement service.ProcurementService, ranking service.RankingService) *ProcurementHandler {
	return &ProcurementHandler{procurement: procurement, ranking: ranking}
}

func getActorID(c *fiber.Ctx) (uuid.UUID, error) {
	return uuid.Parse(getUserID(c))
}

func poErrorStatus(err error) int {
	switch {
	case errors.Is(err, model.ErrUnauthorizedApproval):
		return 403
	case errors.Is(err, model.ErrInvalidTransition):
		return 409
	case errors.Is(err, model.ErrMissingEntity):
		return 404
	case errors.Is(err, model.ErrInsufficientStock):
		return 409
	}
	return 400
}

func (h *ProcurementHandler) CreatePO(c *fiber.Ctx) error {
	var po model.PurchaseOrder
	if err := c.BodyParser(&po); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	actorID, err := getActorID(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid user ID"})
	}
	if err := h.procurement.CreatePO(&po, actorID); err != nil {
		return c.Status(poErrorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(201).JSON(fiber.Map{"message": "Purchase order created", "data": po})
}

func (h *ProcurementHandler) transition(c *fiber.Ctx, fn func(uuid.UUID, uuid.UUID, string) (*model.PurchaseOrder, error)) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid purchase order ID"})
	}
	actorID, err := getActorID(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid user ID"})
	}
	po, err := fn(id, actorID, getRoleCode(c))
	if err != nil {
		return c.Status(poErrorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"data": po})
}

func (h *ProcurementHandler) Submit(c *fiber.Ctx) error {
	return h.transition(c, h.procurement.Submit)
}

func (h *ProcurementHandler) Approve(c *fiber.Ctx) error {
	return h.transition(c, h.procurement.Approve)
}

type rejectRequest struct {
	Note string `json:"note"`
}

func (h *ProcurementHandler) Reject(c *fiber.Ctx) error {
	var req rejectRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	return h.transition(c, func(id, actorID uuid.UUID, role string) (*model.PurchaseOrder, error) {
		return h.procurement.Reject(id, actorID, role, req.Note)
	})
}

func (h *ProcurementHandler) Cancel(c *fiber.Ctx) error {
	return h.transition(c, func(id, actorID uuid.UUID, _ string) (*model.PurchaseOrder, error) {
		return h.procurement.Cancel(id, actorID)
	})
}

func (h *ProcurementHandler) Receive(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid purchase order ID"})
	}
	var req service.ReceiveParams
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	actorID, err := getActorID(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid user ID"})
	}
	po, err := h.procurement.Receive(id, req, actorID)
	if err != nil {
		return c.Status(poErrorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "Goods received", "data": po})
}

func (h *ProcurementHandler) GetPO(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid purchase order ID"})
	}
	po, err := h.procurement.GetPO(id)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Purchase order not found"})
	}
	return c.JSON(po)
}

func (h *ProcurementHandler) ListPOs(c *fiber.Ctx) error {
	outletID, err := getOutletID(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	pos, err := h.procurement.ListPOs(outletID, model.POStatus(c.Query("status")))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(pos)
}

func (h *ProcurementHandler) CreateRequest(c *fiber.Ctx) error {
	var pr model.PurchaseRequest
	if err := c.BodyParser(&pr); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	actorID, err := getActorID(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid user ID"})
	}
	if err := h.procurement.CreateRequest(&pr, actorID); err != nil {
		return c.Status(poErrorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(201).JSON(fiber.Map{"message": "Purchase request created", "data": pr})
}

type approveRequestBody struct {
	SupplierID uuid.UUID `json:"supplier_id"`
}

func (h *ProcurementHandler) ApproveRequest(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid purchase request ID"})
	}
	var body approveRequestBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	actorID, err := getActorID(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid user ID"})
	}
	po, err := h.procurement.ApproveRequest(id, body.SupplierID, actorID, getRoleCode(c))
	if err != nil {
		return c.Status(poErrorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "Purchase request approved", "data": po})
}

func (h *ProcurementHandler) RejectRequest(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid purchase request ID"})
	}
	actorID, err := getActorID(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid user ID"})
	}
	if err := h.procurement.RejectRequest(id, actorID, getRoleCode(c)); err != nil {
		return c.Status(poErrorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "Purchase request rejected"})
}

func (h *ProcurementHandler) ListRequests(c *fiber.Ctx) error {
	outletID, err := getOutletID(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	prs, err := h.procurement.ListRequests(outletID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(prs)
}

// GetSupplierOptions returns ranked sourcing options for an ingredient.
func (h *ProcurementHandler) GetSupplierOptions(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid ingredient ID"})
	}
	options, err := h.ranking.BuildOptions(id)
	if err != nil {
		return c.Status(poErrorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(options)
}

func (h *ProcurementHandler) AutoReorder(c *fiber.Ctx) error {
	outletID, err := getOutletID(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	actorID, err := getActorID(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid user ID"})
	}
	drafts, err := h.ranking.AutoReorder(outletID, actorID)
	if err != nil {
		return c.Status(poErrorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(201).JSON(fiber.Map{"message": "Auto-reorder drafts created", "data": drafts})
}
