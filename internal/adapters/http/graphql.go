package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/geomatch/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to our services.
// Field names follow the REST JSON tags so the default resolver can read domain structs.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lng": &graphql.Field{Type: graphql.Float},
		},
	})

	addressType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Address",
		Fields: graphql.Fields{
			"addressLine": &graphql.Field{Type: graphql.String},
			"city":        &graphql.Field{Type: graphql.String},
			"state":       &graphql.Field{Type: graphql.String},
			"pincode":     &graphql.Field{Type: graphql.String},
		},
	})

	candidateType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Candidate",
		Fields: graphql.Fields{
			"id":               &graphql.Field{Type: graphql.String},
			"kind":             &graphql.Field{Type: graphql.String},
			"name":             &graphql.Field{Type: graphql.String},
			"service_category": &graphql.Field{Type: graphql.String},
			"location":         &graphql.Field{Type: geoPointType},
			"rate_per_hour":    &graphql.Field{Type: graphql.Float},
			"phone":            &graphql.Field{Type: graphql.String},
			"email":            &graphql.Field{Type: graphql.String},
			"address":          &graphql.Field{Type: addressType},
			"experience":       &graphql.Field{Type: graphql.Float},
			"profile_image":    &graphql.Field{Type: graphql.String},
			"overall_rating":   &graphql.Field{Type: graphql.Float},
			"business_name":    &graphql.Field{Type: graphql.String},
			"distance":         &graphql.Field{Type: graphql.Float},
		},
	})

	navigationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Navigation",
		Fields: graphql.Fields{
			"distance":   &graphql.Field{Type: graphql.Float},
			"start":      &graphql.Field{Type: geoPointType},
			"end":        &graphql.Field{Type: geoPointType},
			"directions": &graphql.Field{Type: graphql.String, Description: "Provider route list as JSON"},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"nearby": &graphql.Field{
				Type:        graphql.NewList(candidateType),
				Description: "Available candidates of a kind near a free-text location",
				Args: graphql.FieldConfigArgument{
					"kind":             &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"location":         &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"service_category": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					kind, err := domain.ParseKind(p.Args["kind"].(string))
					if err != nil {
						return nil, err
					}
					category, _ := p.Args["service_category"].(string)
					return deps.Matches.Nearby(p.Context, domain.Query{
						Kind:     kind,
						Location: p.Args["location"].(string),
						Category: category,
					})
				},
			},
			"candidates": &graphql.Field{
				Type:        graphql.NewList(candidateType),
				Description: "Normalized candidate snapshot of a kind",
				Args: graphql.FieldConfigArgument{
					"kind":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 100},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					kind, err := domain.ParseKind(p.Args["kind"].(string))
					if err != nil {
						return nil, err
					}
					limit := p.Args["limit"].(int)
					candidates := deps.Candidates.Fetch(p.Context, kind)
					if limit > 0 && len(candidates) > limit {
						candidates = candidates[:limit]
					}
					return candidates, nil
				},
			},
			"navigation": &graphql.Field{
				Type:        navigationType,
				Description: "Walking directions from a point or address to an address",
				Args: graphql.FieldConfigArgument{
					"start_lat":     &graphql.ArgumentConfig{Type: graphql.Float},
					"start_lng":     &graphql.ArgumentConfig{Type: graphql.Float},
					"start_address": &graphql.ArgumentConfig{Type: graphql.String},
					"end_point":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					q := domain.RouteQuery{EndAddress: p.Args["end_point"].(string)}
					lat, hasLat := p.Args["start_lat"].(float64)
					lng, hasLng := p.Args["start_lng"].(float64)
					switch {
					case hasLat && hasLng:
						q.StartPoint = &domain.GeoPoint{Lat: lat, Lng: lng}
					case hasLat || hasLng:
						return nil, fmt.Errorf("%w: start_lat and start_lng go together", domain.ErrBadRequest)
					default:
						q.StartAddress, _ = p.Args["start_address"].(string)
					}

					res, err := deps.Navigation.Navigate(p.Context, q)
					if err != nil {
						return nil, err
					}
					return map[string]interface{}{
						"distance":   res.DistanceKm,
						"start":      res.Start,
						"end":        res.End,
						"directions": string(res.Directions),
					}, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := decodeBody(c, &req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
