package service

import (
	"fmt"

	"sibos-pos/internal/model"
	"sibos-pos/internal/ranking"
	"sibos-pos/internal/repository"
	"sibos-pos/pkg/logger"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type RankingService interface {
	// BuildOptions assembles and ranks every sourcing choice for an
	// ingredient: its current supplier plus everyone whose catalog lists
	// the same SKU.
	BuildOptions(ingredientID uuid.UUID) ([]ranking.Option, error)
	// AutoReorder drafts purchase orders for every low-stock ingredient at
	// the outlet, substituting underperforming default suppliers with a
	// better same-category alternative. Drafts only; a human still submits.
	AutoReorder(outletID uuid.UUID, actorID uuid.UUID) ([]model.PurchaseOrder, error)
}

type rankingService struct {
	ingredientRepo repository.IngredientRepository
	supplierRepo   repository.SupplierRepository
	settingsRepo   repository.SettingsRepository
	procurement    ProcurementService
	log            *logrus.Entry
}

func NewRankingService(
	ingredientRepo repository.IngredientRepository,
	supplierRepo repository.SupplierRepository,
	settingsRepo repository.SettingsRepository,
	procurement ProcurementService,
) RankingService {
	return &rankingService{
		ingredientRepo: ingredientRepo,
		supplierRepo:   supplierRepo,
		settingsRepo:   settingsRepo,
		procurement:    procurement,
		log:            logger.WithComponent("ranking_service"),
	}
}

func (s *rankingService) BuildOptions(ingredientID uuid.UUID) ([]ranking.Option, error) {
	ing, err := s.ingredientRepo.FindByID(ingredientID)
	if err != nil {
		return nil, fmt.Errorf("%w: ingredient %s", model.ErrMissingEntity, ingredientID)
	}

	var options []ranking.Option
	seen := make(map[uuid.UUID]bool)

	if ing.SupplierID != nil {
		supplier, err := s.supplierRepo.FindByID(*ing.SupplierID)
		if err == nil {
			price := ing.AvgCost
			if item, err := s.supplierRepo.FindCatalogItem(supplier.ID, ing.SKU); err == nil {
				price = item.Price
			}
			options = append(options, ranking.Option{
				SupplierID:   supplier.ID,
				SupplierName: supplier.Name,
				Source:       ranking.SourceCurrent,
				Price:        price,
				Score:        supplier.PerformanceScore,
			})
			seen[supplier.ID] = true
		}
	}

	items, err := s.supplierRepo.FindCatalogBySKU(ing.SKU)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if item.Supplier == nil || seen[item.SupplierID] || !item.Supplier.IsActive {
			continue
		}
		source := ranking.SourceFallback
		if item.Supplier.IsSibosNetwork {
			source = ranking.SourceNetwork
		}
		options = append(options, ranking.Option{
			SupplierID:   item.SupplierID,
			SupplierName: item.Supplier.Name,
			Source:       source,
			Price:        item.Price,
			Score:        item.Supplier.PerformanceScore,
		})
		seen[item.SupplierID] = true
	}

	return ranking.Rank(options), nil
}

func (s *rankingService) AutoReorder(outletID uuid.UUID, actorID uuid.UUID) ([]model.PurchaseOrder, error) {
	settings, err := s.settingsRepo.Get()
	if err != nil {
		return nil, err
	}
	low, err := s.ingredientRepo.FindLowStock(outletID)
	if err != nil {
		return nil, err
	}

	// One draft PO per supplier; lines accumulate across ingredients.
	type draft struct {
		items []model.PurchaseOrderItem
		notes []string
	}
	drafts := make(map[uuid.UUID]*draft)

	for _, ing := range low {
		if ing.SupplierID == nil {
			s.log.WithField("ingredient", ing.Name).Warn("low stock but no default supplier, skipped")
			continue
		}
		supplier, err := s.supplierRepo.FindByID(*ing.SupplierID)
		if err != nil {
			continue
		}

		chosenID := supplier.ID
		var note string
		if supplier.PerformanceScore < settings.ReorderScoreFloor {
			alternatives, err := s.supplierRepo.FindByCategory(supplier.Category)
			if err == nil {
				var candidates []ranking.Candidate
				for _, alt := range alternatives {
					if alt.ID == supplier.ID {
						continue
					}
					candidates = append(candidates, ranking.Candidate{
						SupplierID:   alt.ID,
						SupplierName: alt.Name,
						Score:        alt.PerformanceScore,
					})
				}
				if sub := ranking.PickSubstitute(candidates, settings.ReorderPreferredScore); sub != nil {
					chosenID = sub.SupplierID
					note = fmt.Sprintf("supplier substituted: %s (score %d) replaced by %s (score %d)",
						supplier.Name, supplier.PerformanceScore, sub.SupplierName, sub.Score)
				}
			}
		}

		// Reorder back up to twice the floor.
		qty := ing.MinStock*2 - ing.Stock
		if qty <= 0 {
			continue
		}
		cost := ing.AvgCost
		if item, err := s.supplierRepo.FindCatalogItem(chosenID, ing.SKU); err == nil {
			cost = item.Price
		}

		d, ok := drafts[chosenID]
		if !ok {
			d = &draft{}
			drafts[chosenID] = d
		}
		d.items = append(d.items, model.PurchaseOrderItem{
			IngredientID: ing.ID,
			Quantity:     qty,
			Unit:         ing.Unit,
			Cost:         cost,
		})
		if note != "" {
			d.notes = append(d.notes, note)
		}
	}

	var created []model.PurchaseOrder
	for supplierID, d := range drafts {
		po := &model.PurchaseOrder{
			OutletID:   outletID,
			SupplierID: supplierID,
			Items:      d.items,
		}
		for i, n := range d.notes {
			if i > 0 {
				po.Note += "\n"
			}
			po.Note += n
		}
		if err := s.procurement.CreatePO(po, actorID); err != nil {
			return created, err
		}
		s.log.WithFields(logrus.Fields{
			"po":    po.PONumber,
			"lines": len(po.Items),
		}).Info("auto-reorder draft created")
		created = append(created, *po)
	}
	return created, nil
}
