package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/samirrijal/geomatch/internal/core/domain"
)

type queryOptions struct {
	category string
	timeout  time.Duration
}

func newNearbyCmd() *cobra.Command {
	opts := queryOptions{}
	cmd := &cobra.Command{
		Use:   "nearby <worker|architect|merchant> <location>",
		Short: "List available candidates near a free-text location",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := domain.ParseKind(args[0])
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			svc, err := services(ctx)
			if err != nil {
				return err
			}
			defer svc.Close()

			nearby, err := svc.Matches.Nearby(ctx, domain.Query{
				Kind:     kind,
				Location: args[1],
				Category: opts.category,
			})
			if err != nil {
				return err
			}
			return printJSON(map[string]interface{}{"nearby_" + kind.Plural(): nearby})
		},
	}
	cmd.Flags().StringVarP(&opts.category, "category", "c", "", "service category to match (workers only)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", time.Minute, "overall query timeout")
	return cmd
}

func newGeocodeCmd() *cobra.Command {
	timeout := 30 * time.Second
	cmd := &cobra.Command{
		Use:   "geocode <address>",
		Short: "Resolve a free-text address to coordinates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			svc, err := services(ctx)
			if err != nil {
				return err
			}
			defer svc.Close()

			p, err := svc.Geocoder.Geocode(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(p)
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", timeout, "geocode timeout")
	return cmd
}

func newNavigateCmd() *cobra.Command {
	timeout := 30 * time.Second
	cmd := &cobra.Command{
		Use:   "navigate <start> <end>",
		Short: "Walking directions between a start (lat,lng or address) and an end address",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := domain.RouteQuery{EndAddress: args[1]}
			if p, ok := parseLatLng(args[0]); ok {
				q.StartPoint = &p
			} else {
				q.StartAddress = args[0]
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			svc, err := services(ctx)
			if err != nil {
				return err
			}
			defer svc.Close()

			res, err := svc.Navigation.Navigate(ctx, q)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "distance: %.2f km\n", res.DistanceKm)
			_, err = cmd.OutOrStdout().Write(append(res.Directions, '\n'))
			return err
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", timeout, "navigation timeout")
	return cmd
}

// parseLatLng accepts "lat,lng".
func parseLatLng(s string) (domain.GeoPoint, bool) {
	latStr, lngStr, ok := strings.Cut(s, ",")
	if !ok {
		return domain.GeoPoint{}, false
	}
	lat, err1 := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	lng, err2 := strconv.ParseFloat(strings.TrimSpace(lngStr), 64)
	if err1 != nil || err2 != nil {
		return domain.GeoPoint{}, false
	}
	p := domain.GeoPoint{Lat: lat, Lng: lng}
	return p, p.Valid()
}

func init() {
	rootCmd.AddCommand(newNearbyCmd(), newGeocodeCmd(), newNavigateCmd())
}
