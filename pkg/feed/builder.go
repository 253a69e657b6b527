package feed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
	"github.com/travigo/departures-rss/pkg/config"
	"github.com/travigo/departures-rss/pkg/transportrest"
)

const (
	NoDeparturesTitle = "Keine Abfahrten verfuegbar"
	NoFurtherStops    = "Keine weiteren Halte verfuegbar"
	Language          = "de-de"
)

type DepartureSource interface {
	Departures(ctx context.Context, results int, durationMinutes int) ([]transportrest.Departure, error)
	Stopovers(ctx context.Context, tripID string, currentStopID string) ([]transportrest.Stopover, error)
}

type Builder struct {
	source DepartureSource

	stopName string
	link     string

	results       int
	windowMinutes int
	concurrency   int
}

func NewBuilder(cfg *config.Config, source DepartureSource) *Builder {
	concurrency := cfg.EnrichConcurrency
	if concurrency < 1 {
		concurrency = 1
	}

	return &Builder{
		source:        source,
		stopName:      cfg.StopName,
		link:          cfg.FeedLink,
		results:       cfg.Results,
		windowMinutes: cfg.WindowMinutes,
		concurrency:   concurrency,
	}
}

// Build returns the RSS document for the upcoming departures. Upstream failures degrade to placeholder text.
func (b *Builder) Build(ctx context.Context) string {
	document, err := b.Feed(ctx).Render()
	if err != nil {
		log.Error().Err(err).Msg("Failed to render feed")

		document, _ = b.channel([]Item{{Title: NoDeparturesTitle}}).Render()
	}

	return document
}

// Feed fetches the departures and assembles the document tree
func (b *Builder) Feed(ctx context.Context) RSS {
	departures, err := b.source.Departures(ctx, b.results, b.windowMinutes)
	if err != nil {
		logFetchError(err).Msg("Failed to fetch departures")
	}

	if len(departures) == 0 {
		return b.channel([]Item{{Title: NoDeparturesTitle}})
	}

	items := make([]Item, len(departures))

	p := pool.New().WithMaxGoroutines(b.concurrency)
	for i, departure := range departures {
		i, departure := i, departure
		p.Go(func() {
			items[i] = Item{
				Title:       Title(departure),
				Description: b.description(ctx, departure),
			}
		})
	}
	p.Wait()

	return b.channel(items)
}

func (b *Builder) channel(items []Item) RSS {
	return RSS{
		Version: "2.0",
		Channel: Channel{
			Title:       "Abfahrten " + b.stopName,
			Link:        b.link,
			Description: "Naechste Abfahrten am " + b.stopName,
			Language:    Language,
			Items:       items,
		},
	}
}

func (b *Builder) description(ctx context.Context, departure transportrest.Departure) string {
	if departure.TripID == "" {
		return fmt.Sprintf("Linie: %s | Richtung: %s", departure.LineName(), departure.DirectionName())
	}

	stopovers, err := b.source.Stopovers(ctx, departure.TripID, departure.Stop.ID)
	if err != nil {
		logFetchError(err).Str("tripid", departure.TripID).Msg("Failed to fetch trip stopovers")
	}

	if len(stopovers) == 0 {
		return NoFurtherStops
	}

	lines := make([]string, 0, len(stopovers))
	for _, stopover := range stopovers {
		lines = append(lines, fmt.Sprintf("%s%s %s", FormatTime(stopover.Arrival), FormatDelay(stopover.ArrivalDelay), stopover.Stop.Name))
	}

	return strings.Join(lines, "\n")
}

// Title renders "<time><delay> <line> -> <direction><platform>"
func Title(departure transportrest.Departure) string {
	platform := ""
	if name := departure.PlatformName(); name != "" {
		platform = " Gl." + name
	}

	return fmt.Sprintf(
		"%s%s %s -> %s%s",
		FormatTime(departure.When),
		FormatDelay(departure.Delay),
		departure.LineName(),
		departure.DirectionName(),
		platform,
	)
}

func logFetchError(err error) *zerolog.Event {
	event := log.Warn().Err(err)

	var statusErr *transportrest.StatusError
	var decodeErr *transportrest.DecodeError
	var transportErr *transportrest.TransportError

	switch {
	case errors.As(err, &statusErr):
		event = event.Str("kind", "status").Int("status", statusErr.StatusCode)
	case errors.As(err, &decodeErr):
		event = event.Str("kind", "decode")
	case errors.As(err, &transportErr):
		event = event.Str("kind", "transport")
	}

	return event
}
