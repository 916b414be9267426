package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	inCache "github.com/farmstand/farmstand/internal/cache"
	inErrors "github.com/farmstand/farmstand/internal/errors"
	"github.com/farmstand/farmstand/internal/log"
	"github.com/farmstand/farmstand/product/internal/otel"
	"github.com/farmstand/farmstand/product/internal/repository"
	"github.com/farmstand/farmstand/product/pkg/response"
)

const cacheTTL = time.Hour

// ProductRepository is the catalog store. The pgx implementation lives in
// product/internal/repository.
type ProductRepository interface {
	FindProducts(c context.Context) ([]repository.Product, error)
	FindProductsByCategoryId(c context.Context, categoryID uuid.UUID) ([]repository.Product, error)
	FindProductById(c context.Context, productID uuid.UUID) (repository.Product, error)
	FindCategories(c context.Context) ([]repository.Category, error)
	FindFarms(c context.Context) ([]repository.Farm, error)
}

type ProductService struct {
	products ProductRepository
	cache    *redis.Client
}

func NewProductService(products ProductRepository, cache *redis.Client) ProductService {
	return ProductService{products: products, cache: cache}
}

// FindProducts lists the catalog, optionally filtered by category. The
// unfiltered listing is served cache aside with a one hour TTL.
func (s ProductService) FindProducts(
	c context.Context,
	categoryID uuid.UUID,
) ([]response.Product, error) {
	c, span := otel.Tracer.Start(c, "ProductService FindProducts")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService FindProducts").
		Logger()

	if categoryID != uuid.Nil {
		logger = logger.With().
			Str(log.KeyCategoryID, categoryID.String()).
			Str(log.KeyProcess, "finding products by category").
			Logger()
		logger.Info().Msg("finding products by category")
		products, err := s.products.FindProductsByCategoryId(c, categoryID)
		if err != nil {
			err = fmt.Errorf("failed finding products by category with error=%w", err)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return nil, err
		}
		logger.Info().Msgf("found %d products", len(products))
		return response.NewProducts(products), nil
	}

	logger = logger.With().
		Str(log.KeyCacheKey, inCache.KeyProducts).
		Str(log.KeyProcess, "finding products in cache").
		Logger()
	logger.Trace().Msg("finding products in cache")
	jsonCache, err := s.cache.Get(c, inCache.KeyProducts).Result()
	if err == nil && jsonCache != "" {
		products := []response.Product{}
		err = json.Unmarshal([]byte(jsonCache), &products)
		if err == nil {
			logger.Info().Msgf("found %d products in cache", len(products))
			return products, nil
		}
		err = fmt.Errorf("failed unmarshaling cached products with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
	} else if err != nil && !errors.Is(err, redis.Nil) {
		err = fmt.Errorf("failed finding products in cache with error=%w", err)
		logger.Info().Err(err).Msg(err.Error())
	}

	logger = logger.With().Str(log.KeyProcess, "finding products in database").Logger()
	logger.Info().Msg("finding products in database")
	products, err := s.products.FindProducts(c)
	if err != nil {
		err = fmt.Errorf("failed finding products in database with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Msgf("found %d products in database", len(products))

	responses := response.NewProducts(products)
	s.setCache(c, inCache.KeyProducts, responses)
	return responses, nil
}

func (s ProductService) FindProductById(
	c context.Context,
	productID uuid.UUID,
) (response.Product, error) {
	c, span := otel.Tracer.Start(c, "ProductService FindProductById")
	defer span.End()

	cacheKey := fmt.Sprintf(inCache.KeyProduct, productID.String())
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService FindProductById").
		Str(log.KeyProductID, productID.String()).
		Str(log.KeyCacheKey, cacheKey).
		Logger()

	logger.Trace().Msg("finding product in cache")
	jsonCache, err := s.cache.Get(c, cacheKey).Result()
	if err == nil && jsonCache != "" {
		product := response.Product{}
		err = json.Unmarshal([]byte(jsonCache), &product)
		if err == nil {
			logger.Info().Msg("found product in cache")
			return product, nil
		}
		err = fmt.Errorf("failed unmarshaling cached product with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
	}

	logger = logger.With().Str(log.KeyProcess, "finding product in database").Logger()
	logger.Info().Msg("finding product in database")
	product, err := s.products.FindProductById(c, productID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = inErrors.ErrProductNotFound
		}
		err = fmt.Errorf("failed finding product in database with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	logger.Info().Msg("found product in database")

	res := response.NewProduct(product)
	s.setCache(c, cacheKey, res)
	return res, nil
}

// FindCatalog fetches products, categories and farms concurrently for the
// storefront home screen. Each section degrades independently: a failed
// section is returned empty while the others still render.
func (s ProductService) FindCatalog(c context.Context) response.Catalog {
	c, span := otel.Tracer.Start(c, "ProductService FindCatalog")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService FindCatalog").
		Str(log.KeyProcess, "finding catalog").
		Logger()
	logger.Info().Msg("finding catalog")
	c = logger.WithContext(c)

	catalog := response.Catalog{
		Products:   []response.Product{},
		Categories: []response.Category{},
		Farms:      []response.Farm{},
	}

	wg := sync.WaitGroup{}
	wg.Add(3)
	go func() {
		defer wg.Done()
		products, err := s.FindProducts(c, uuid.Nil)
		if err != nil {
			err = fmt.Errorf("failed finding catalog products with error=%w", err)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return
		}
		catalog.Products = products
	}()
	go func() {
		defer wg.Done()
		categories, err := s.findCategories(c)
		if err != nil {
			err = fmt.Errorf("failed finding catalog categories with error=%w", err)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return
		}
		catalog.Categories = categories
	}()
	go func() {
		defer wg.Done()
		farms, err := s.findFarms(c)
		if err != nil {
			err = fmt.Errorf("failed finding catalog farms with error=%w", err)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return
		}
		catalog.Farms = farms
	}()
	wg.Wait()

	logger.Info().
		Int("products", len(catalog.Products)).
		Int("categories", len(catalog.Categories)).
		Int("farms", len(catalog.Farms)).
		Msg("found catalog")
	return catalog
}

func (s ProductService) findCategories(c context.Context) ([]response.Category, error) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService findCategories").
		Str(log.KeyCacheKey, inCache.KeyCategories).
		Logger()

	logger.Trace().Msg("finding categories in cache")
	jsonCache, err := s.cache.Get(c, inCache.KeyCategories).Result()
	if err == nil && jsonCache != "" {
		categories := []response.Category{}
		if err = json.Unmarshal([]byte(jsonCache), &categories); err == nil {
			logger.Info().Msgf("found %d categories in cache", len(categories))
			return categories, nil
		}
	}

	logger.Info().Msg("finding categories in database")
	categories, err := s.products.FindCategories(c)
	if err != nil {
		return nil, err
	}
	logger.Info().Msgf("found %d categories in database", len(categories))

	responses := response.NewCategories(categories)
	s.setCache(c, inCache.KeyCategories, responses)
	return responses, nil
}

func (s ProductService) findFarms(c context.Context) ([]response.Farm, error) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService findFarms").
		Str(log.KeyCacheKey, inCache.KeyFarms).
		Logger()

	logger.Trace().Msg("finding farms in cache")
	jsonCache, err := s.cache.Get(c, inCache.KeyFarms).Result()
	if err == nil && jsonCache != "" {
		farms := []response.Farm{}
		if err = json.Unmarshal([]byte(jsonCache), &farms); err == nil {
			logger.Info().Msgf("found %d farms in cache", len(farms))
			return farms, nil
		}
	}

	logger.Info().Msg("finding farms in database")
	farms, err := s.products.FindFarms(c)
	if err != nil {
		return nil, err
	}
	logger.Info().Msgf("found %d farms in database", len(farms))

	responses := response.NewFarms(farms)
	s.setCache(c, inCache.KeyFarms, responses)
	return responses, nil
}

// setCache is best effort; a cache write failure never fails the read path.
func (s ProductService) setCache(c context.Context, key string, value any) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService setCache").
		Str(log.KeyCacheKey, key).
		Logger()

	payload, err := json.Marshal(value)
	if err != nil {
		err = fmt.Errorf("failed marshaling cache payload with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	err = s.cache.Set(c, key, payload, cacheTTL).Err()
	if err != nil {
		err = fmt.Errorf("failed writing cache with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	logger.Trace().Msg("wrote cache")
}
