package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	inErrors "github.com/farmstand/farmstand/internal/errors"
	"github.com/farmstand/farmstand/internal/log"
	"github.com/farmstand/farmstand/product/internal/otel"
	"github.com/farmstand/farmstand/product/internal/repository"
	"github.com/farmstand/farmstand/product/pkg/response"
)

// FavoriteRepository persists per user product favorites.
type FavoriteRepository interface {
	InsertFavorite(c context.Context, userID uuid.UUID, productID uuid.UUID) error
	DeleteFavorite(c context.Context, userID uuid.UUID, productID uuid.UUID) error
	FindFavoriteProductIdsByUserId(c context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	FindFavoriteProductsByUserId(c context.Context, userID uuid.UUID) ([]repository.Product, error)
}

type FavoriteService struct {
	favorites FavoriteRepository
}

func NewFavoriteService(favorites FavoriteRepository) FavoriteService {
	return FavoriteService{favorites: favorites}
}

// ToggleFavorite adds the product to the user's favorites, or removes it when
// already present. It reports whether the product is favorited afterwards.
func (s FavoriteService) ToggleFavorite(
	c context.Context,
	userID uuid.UUID,
	productID uuid.UUID,
) (bool, error) {
	c, span := otel.Tracer.Start(c, "FavoriteService ToggleFavorite")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "FavoriteService ToggleFavorite").
		Str(log.KeyUserID, userID.String()).
		Str(log.KeyProductID, productID.String()).
		Logger()

	if userID == uuid.Nil {
		inErrors.HandleError(inErrors.ErrUnauthenticated, span)
		logger.Error().
			Err(inErrors.ErrUnauthenticated).
			Msg(inErrors.ErrUnauthenticated.Error())
		return false, inErrors.ErrUnauthenticated
	}

	logger = logger.With().Str(log.KeyProcess, "finding existing favorites").Logger()
	logger.Info().Msg("finding existing favorites")
	ids, err := s.favorites.FindFavoriteProductIdsByUserId(c, userID)
	if err != nil {
		err = fmt.Errorf("failed finding existing favorites with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return false, err
	}

	favorited := false
	for _, id := range ids {
		if id == productID {
			favorited = true
			break
		}
	}

	if favorited {
		logger = logger.With().Str(log.KeyProcess, "removing favorite").Logger()
		logger.Info().Msg("product already favorited, removing favorite")
		err = s.favorites.DeleteFavorite(c, userID, productID)
		if err != nil {
			err = fmt.Errorf("failed removing favorite with error=%w", err)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return true, err
		}
		logger.Info().Msg("removed favorite")
		return false, nil
	}

	logger = logger.With().Str(log.KeyProcess, "adding favorite").Logger()
	logger.Info().Msg("adding favorite")
	err = s.favorites.InsertFavorite(c, userID, productID)
	if err != nil {
		err = fmt.Errorf("failed adding favorite with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return false, err
	}
	logger.Info().Msg("added favorite")
	return true, nil
}

// FindFavorites lists the user's favorited products. Store errors degrade to
// an empty list.
func (s FavoriteService) FindFavorites(c context.Context, userID uuid.UUID) []response.Product {
	c, span := otel.Tracer.Start(c, "FavoriteService FindFavorites")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "FavoriteService FindFavorites").
		Str(log.KeyUserID, userID.String()).
		Str(log.KeyProcess, "finding favorites").
		Logger()

	if userID == uuid.Nil {
		logger.Info().Msg("no authenticated user, returning empty favorites")
		return []response.Product{}
	}

	logger.Info().Msg("finding favorites")
	products, err := s.favorites.FindFavoriteProductsByUserId(c, userID)
	if err != nil {
		err = fmt.Errorf("failed finding favorites with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return []response.Product{}
	}
	logger.Info().Msgf("found %d favorites", len(products))

	return response.NewProducts(products)
}
