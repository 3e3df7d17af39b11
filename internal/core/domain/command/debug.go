package command

import (
	"context"
	"fmt"
	"irabot/internal/core/domain"
	"irabot/internal/core/port"
	"runtime"
	"runtime/metrics"
	"time"

	"github.com/rs/zerolog/log"
)

// Debug reports runtime statistics of the bot process to admins.
type Debug struct {
	interactions port.InteractionStore
	started      time.Time
}

func NewDebug(interactions port.InteractionStore, started time.Time) *Debug {
	return &Debug{interactions: interactions, started: started}
}

func (d *Debug) Info() domain.CommandInfo {
	return domain.CommandInfo{
		Name:        "debug",
		Aliases:     []string{"stats"},
		Description: "Show runtime statistics",
		AdminOnly:   true,
	}
}

const kb = 1024
const debugTemplate = `uptime: %s
allocated mem: %d KB
goroutines running: %d
heap: %d KB
stack: %d KB
pending interactions: %d
compiled with %s for %s-%s
`
const metricCount = 3

func (d *Debug) Run(ctx context.Context, inv *port.Invocation) error {
	data := make([]metrics.Sample, metricCount)
	data[0] = metrics.Sample{Name: "/memory/classes/heap/objects:bytes"}
	data[1] = metrics.Sample{Name: "/memory/classes/heap/stacks:bytes"}
	data[2] = metrics.Sample{Name: "/memory/classes/total:bytes"}

	metrics.Read(data)

	for _, sample := range data {
		log.Debug().Str("name", sample.Name).Msgf("%d", sample.Value.Uint64())
	}

	_, err := inv.Reply(ctx,
		fmt.Sprintf(
			debugTemplate,
			time.Since(d.started).Truncate(time.Second),
			data[2].Value.Uint64()/kb,
			runtime.NumGoroutine(),
			data[0].Value.Uint64()/kb,
			data[1].Value.Uint64()/kb,
			d.interactions.Len(),
			runtime.Version(), runtime.GOOS, runtime.GOARCH,
		))

	return err
}
