package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/pos-inventario/internal/application/dto"
	"github.com/jhoicas/pos-inventario/internal/application/inventory"
	"github.com/jhoicas/pos-inventario/internal/domain"
	"github.com/jhoicas/pos-inventario/internal/domain/entity"
	"github.com/jhoicas/pos-inventario/internal/domain/repository"
)

// ProductUseCase casos de uso CRUD para productos. Stock y lotes se manejan vía el ledger.
type ProductUseCase struct {
	txRunner inventory.TxRunner
	repo     repository.ProductRepository
}

// NewProductUseCase construye el caso de uso. txRunner se usa para borrar con el producto bloqueado.
func NewProductUseCase(txRunner inventory.TxRunner, repo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{txRunner: txRunner, repo: repo}
}

// Create crea un nuevo producto con stock en cero y sin lotes.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	sku := strings.TrimSpace(in.SKU)
	if sku == "" || strings.TrimSpace(in.Name) == "" {
		return nil, domain.InvalidArgument("sku y name son requeridos")
	}
	if in.Price.IsNegative() {
		return nil, domain.InvalidArgument("price no puede ser negativo")
	}
	existing, err := uc.repo.GetBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	product := entity.NewProduct(uuid.New().String(), sku, strings.TrimSpace(in.Name), in.CategoryID, in.Price, time.Now())
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return dto.ToProductResponse(product), nil
}

// GetByID obtiene un producto por ID con sus lotes.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}
	return dto.ToProductResponse(product), nil
}

// Update actualiza un producto. No permite modificar stock (se maneja vía el ledger).
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}
	if in.SKU != nil {
		sku := strings.TrimSpace(*in.SKU)
		if sku == "" {
			return nil, domain.InvalidArgument("sku no puede ser vacío")
		}
		if sku != product.SKU {
			other, err := uc.repo.GetBySKU(ctx, sku)
			if err != nil {
				return nil, err
			}
			if other != nil {
				return nil, domain.ErrDuplicate
			}
		}
		product.SKU = sku
	}
	if in.Name != nil {
		product.Name = strings.TrimSpace(*in.Name)
	}
	if in.CategoryID != nil {
		product.CategoryID = *in.CategoryID
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return nil, domain.InvalidArgument("price no puede ser negativo")
		}
		product.Price = *in.Price
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return dto.ToProductResponse(product), nil
}

// List lista productos con paginación.
func (uc *ProductUseCase) List(ctx context.Context, limit, offset int) (*dto.ProductListResponse, error) {
	list, err := uc.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *dto.ToProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// Delete elimina un producto. Si tiene movimientos o ventas devuelve ErrConflict:
// el historial referencia al producto. La verificación y el borrado corren en la misma
// transacción con la fila bloqueada, igual que cualquier movimiento de stock.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	return uc.txRunner.Run(ctx, func(repos inventory.TxRepos) error {
		product, err := repos.Products.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		entries, err := repos.Log.CountByProduct(ctx, id)
		if err != nil {
			return err
		}
		sales, err := repos.Sales.CountByProduct(ctx, id)
		if err != nil {
			return err
		}
		if entries > 0 || sales > 0 {
			return domain.ErrConflict
		}
		return repos.Products.Delete(ctx, id)
	})
}
