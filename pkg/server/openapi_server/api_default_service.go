package openapi_server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/natevvv/osm-tile-routing/pkg/graph/path"
	"github.com/natevvv/osm-tile-routing/pkg/location"
	"github.com/natevvv/osm-tile-routing/pkg/routing"
	"github.com/natevvv/osm-tile-routing/pkg/slice"
)

// DefaultApiService is a service that implements the logic for the DefaultApiServicer
// This service should implement the business logic for every endpoint for the DefaultApi API.
// Include any external packages or services that will be required by this service.
type DefaultApiService struct {
	router   *routing.Router
	resolver location.Resolver
	logger   *slog.Logger
}

// NewDefaultApiService creates a default api service. Keys unknown to the resolver are
// looked up by node id in the graph of the router.
func NewDefaultApiService(router *routing.Router, resolver location.Resolver, logger *slog.Logger) DefaultApiServicer {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultApiService{
		router:   router,
		resolver: location.Resolvers{resolver, location.GraphResolver{Graph: router.Graph()}},
		logger:   logger,
	}
}

// ComputeRoute - Compute a new route
func (s *DefaultApiService) ComputeRoute(ctx context.Context, routeRequest RouteRequest) (ImplResponse, error) {
	if routeRequest.Algorithm != "" && !slice.Contains(routing.Navigators, routeRequest.Algorithm) {
		return Response(http.StatusBadRequest, "Unknown Navigator"), nil
	}

	origin, err := s.resolve(ctx, routeRequest.From)
	if errors.Is(err, location.ErrNotFound) {
		s.logger.Info("unknown location", "key", routeRequest.From)
		return Response(http.StatusNotFound, err.Error()), nil
	} else if err != nil {
		return Response(http.StatusBadGateway, nil), err
	}
	destination, err := s.resolve(ctx, routeRequest.To)
	if errors.Is(err, location.ErrNotFound) {
		return Response(http.StatusNotFound, err.Error()), nil
	} else if err != nil {
		return Response(http.StatusBadGateway, nil), err
	}

	algorithm := routeRequest.Algorithm
	if algorithm == "" {
		algorithm = s.router.Navigator()
	}
	routeConfig := routing.RouteConfig{
		Algorithm:  algorithm,
		TargetRank: routeRequest.TargetRank,
	}

	route, err := s.router.ComputeRoute(ctx, origin, destination, routeConfig)
	if err != nil {
		s.logger.Warn("route failed", "from", routeRequest.From, "to", routeRequest.To, "error", err)
		return Response(http.StatusBadGateway, nil), err
	}

	routeResult := RouteResult{
		Found:    route.Exists,
		Path:     make([]PathNode, 0, len(route.Waypoints)),
		Metadata: newRouteMetadata(algorithm, route.Metadata),
	}
	for _, waypoint := range route.Waypoints {
		routeResult.Path = append(routeResult.Path, PathNode{
			ID:   waypoint.ID,
			Lon:  waypoint.Coordinates.Lon(),
			Lat:  waypoint.Coordinates.Lat(),
			Cost: waypoint.Cost,
		})
	}

	return Response(http.StatusOK, routeResult), nil
}

func (s *DefaultApiService) KillRoute(ctx context.Context) (ImplResponse, error) {
	if !s.router.Kill() {
		return Response(http.StatusConflict, "No running route"), nil
	}
	return Response(http.StatusAccepted, "Killed"), nil
}

func (s *DefaultApiService) SetNavigator(ctx context.Context, navigatorRequest NavigatorRequest) (ImplResponse, error) {
	success := s.router.SetNavigator(navigatorRequest.Navigator)

	if !success {
		return Response(http.StatusBadRequest, "Unknown Navigator"), nil
	}
	return Response(http.StatusOK, navigatorRequest.Navigator), nil
}

func (s *DefaultApiService) GetGraph(ctx context.Context) (ImplResponse, error) {
	return Response(http.StatusOK, s.router.GraphStats()), nil
}

func (s *DefaultApiService) resolve(ctx context.Context, key string) (path.Endpoint, error) {
	loc, err := s.resolver.Resolve(ctx, key)
	if err != nil {
		return path.Endpoint{}, err
	}
	return loc.Endpoint(), nil
}

func newRouteMetadata(algorithm string, m path.Metadata) RouteMetadata {
	return RouteMetadata{
		Algorithm:     algorithm,
		RequestCount:  m.RequestCount,
		ByteCount:     m.ByteCount,
		CacheHits:     m.CacheHits,
		DijkstraRank:  m.DijkstraRank,
		ExecutionTime: m.ExecutionTime.Milliseconds(),
		Cost:          m.Cost,
	}
}
