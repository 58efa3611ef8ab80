// Package catalog implements the product use cases: storefront browsing over the
// cached product list, admin product management and image upload.
package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/greenshop/backend/internal/domain/catalog"
	"github.com/greenshop/backend/internal/domain/shared"
	"github.com/greenshop/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Storefront list sizes
const (
	CatalogListLimit = shared.DefaultListLimit
	HomeFeaturedSize = 8
	HomeNewSize      = 4
	RelatedSize      = 4
)

// catalogListKey identifies the storefront list in the product cache
var catalogListKey = fmt.Sprintf("list:%s:%d", shared.DefaultOrderSpec(), CatalogListLimit)

// ProductService handles product-related business operations.
// Storefront reads come from the cached newest-first list; every write invalidates it.
type ProductService struct {
	productRepo catalog.ProductRepository
	cache       ProductCache
	logger      *zap.Logger
}

// ProductServiceOption configures a ProductService
type ProductServiceOption func(*ProductService)

// WithProductLogger sets the logger
func WithProductLogger(logger *zap.Logger) ProductServiceOption {
	return func(s *ProductService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewProductService creates a new ProductService
func NewProductService(productRepo catalog.ProductRepository, cache ProductCache, opts ...ProductServiceOption) *ProductService {
	s := &ProductService{
		productRepo: productRepo,
		cache:       cache,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Catalog returns the storefront product list, newest first.
// Cache failures are logged and the list is read from the repository; a
// list is only stored back when the cache generation was readable.
func (s *ProductService) Catalog(ctx context.Context) ([]catalog.Product, error) {
	products, gen, ok, cacheErr := s.cache.Get(ctx, catalogListKey)
	if cacheErr != nil {
		s.logger.Warn("Product cache read failed", zap.Error(cacheErr))
	} else if ok {
		return products, nil
	}

	products, err := s.productRepo.List(ctx, shared.DefaultOrderSpec(), CatalogListLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	if cacheErr == nil {
		if err := s.cache.Set(ctx, catalogListKey, gen, products); err != nil {
			s.logger.Warn("Product cache write failed", zap.Error(err))
		}
	}
	return products, nil
}

// Browse runs the catalog engine over the storefront list
func (s *ProductService) Browse(ctx context.Context, req BrowseRequest) (*BrowseResponse, error) {
	products, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}

	maxPrice := catalog.MaxPrice(products)
	query, err := req.ToQuery(maxPrice)
	if err != nil {
		return nil, err
	}
	query.Filters = query.Filters.Normalize()

	result := catalog.Apply(products, query)
	return &BrowseResponse{
		Products: ToProductResponses(result),
		Meta: BrowseMeta{
			Total:                  len(result),
			MaxPrice:               maxPrice,
			AvailableSubcategories: catalog.AvailableSubcategories(query.Filters.Categories),
			Sort:                   string(query.Sort),
		},
	}, nil
}

// GetProduct returns a product, looking in the storefront list first
func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	products, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].ID == id {
			p := products[i]
			return &p, nil
		}
	}
	return s.productRepo.FindByID(ctx, id)
}

// GetByID returns a single product response
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// Related returns products from the same category as id
func (s *ProductService) Related(ctx context.Context, id uuid.UUID) ([]ProductResponse, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	products, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	return ToProductResponses(catalog.Related(products, product, RelatedSize)), nil
}

// Home returns the featured and new-arrival selections
func (s *ProductService) Home(ctx context.Context) (*HomeResponse, error) {
	products, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	return &HomeResponse{
		Featured:    ToProductResponses(catalog.Featured(products, HomeFeaturedSize)),
		NewArrivals: ToProductResponses(catalog.NewArrivals(products, HomeNewSize)),
	}, nil
}

// Filters returns the metadata for the storefront filter controls
func (s *ProductService) Filters(ctx context.Context) (*catalog.Metadata, error) {
	products, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	meta := catalog.BuildMetadata(products)
	return &meta, nil
}

// ByIDs returns the listed products among ids, in catalog order
func (s *ProductService) ByIDs(ctx context.Context, ids []uuid.UUID) ([]ProductResponse, error) {
	products, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	return ToProductResponses(catalog.SelectByIDs(products, ids)), nil
}

// AdminList lists products for the admin panel straight from the repository
func (s *ProductService) AdminList(ctx context.Context, filter AdminProductListFilter) ([]ProductResponse, error) {
	criteria := catalog.ProductCriteria{
		Category: catalog.Category(filter.Category),
		Featured: filter.Featured,
		InStock:  filter.InStock,
		Query:    strings.TrimSpace(filter.Search),
	}
	products, err := s.productRepo.Filter(ctx, criteria, shared.ParseOrderSpec(filter.OrderBy), filter.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return ToProductResponses(products), nil
}

// Count returns the total number of products
func (s *ProductService) Count(ctx context.Context) (int64, error) {
	return s.productRepo.Count(ctx)
}

// Create creates a new product
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	product, err := catalog.NewProduct(req.ToPatch())
	if err != nil {
		return nil, err
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	s.invalidate(ctx)

	logger.For(ctx, s.logger).Info("Product created", zap.String("product_id", product.ID.String()), zap.String("title", product.Title))
	resp := ToProductResponse(product)
	return &resp, nil
}

// Update applies a partial update
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	patch := req.ToPatch()
	if err := patch.Normalized().Validate(); err != nil {
		return nil, err
	}
	product, err := s.productRepo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)

	resp := ToProductResponse(product)
	return &resp, nil
}

// Delete removes a product. Past orders keep their item snapshots.
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	logger.For(ctx, s.logger).Info("Product deleted", zap.String("product_id", id.String()))
	return nil
}

func (s *ProductService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Error("Product cache invalidation failed", zap.Error(err))
	}
}
