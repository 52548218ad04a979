package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/gatewatch/internal/client"
	"github.com/alfredjeanlab/gatewatch/internal/events"
	"github.com/alfredjeanlab/gatewatch/internal/ui"
)

// sseRetryWait is the pause before reconnecting a dropped event stream.
const sseRetryWait = 2 * time.Second

var watchCmd = &cobra.Command{
	Use:     "watch",
	Short:   "Follow gate events as they happen",
	GroupID: "query",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		natsURL, _ := cmd.Flags().GetString("nats")
		topics, _ := cmd.Flags().GetStringSlice("topics")
		all, _ := cmd.Flags().GetBool("all")
		if all {
			topics = []string{events.TopicAll}
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if natsURL != "" {
			return watchNATS(ctx, natsURL, topics)
		}
		return watchSSE(ctx, topics)
	},
}

// watchSSE follows the daemon's event stream, resuming from the last seen
// event after a disconnect.
func watchSSE(ctx context.Context, topics []string) error {
	req := &client.StreamRequest{Topics: topics}
	for {
		err := gateClient.Stream(ctx, req, func(e client.Event) error {
			if e.ID != "" {
				req.LastEventID = e.ID
			}
			printEvent(e.Topic, e.Data)
			return nil
		})
		if ctx.Err() != nil {
			return nil
		}
		var apiErr *client.APIError
		if errors.As(err, &apiErr) {
			return fmt.Errorf("event stream: %w", err)
		}
		if err != nil {
			log.Printf("event stream: %v; reconnecting", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(sseRetryWait):
		}
	}
}

// watchNATS subscribes to the bus directly, without the daemon's API.
func watchNATS(ctx context.Context, natsURL string, topics []string) error {
	sub, err := events.NewNATSSubscriber(natsURL,
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Printf("nats: disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			log.Printf("nats: reconnected")
		}),
	)
	if err != nil {
		return fmt.Errorf("connecting to NATS: %w", err)
	}
	defer sub.Close()

	merged := make(chan events.Message, 64)
	for _, topic := range topics {
		ch, cancel, err := sub.Subscribe(topic)
		if err != nil {
			return fmt.Errorf("subscribing to %s: %w", topic, err)
		}
		defer cancel()
		go func() {
			for msg := range ch {
				select {
				case merged <- msg:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-merged:
			printEvent(msg.Topic, msg.Data)
		}
	}
}

func printEvent(topic string, data []byte) {
	if jsonOutput {
		fmt.Printf("{\"topic\":%q,\"data\":%s}\n", topic, data)
		return
	}
	fmt.Printf("%s  %s\n", ui.RenderMuted(time.Now().Format(timeLayout)), describeEvent(topic, data))
}

// describeEvent renders an event payload as a single human-readable line.
func describeEvent(topic string, data []byte) string {
	switch topic {
	case events.TopicGateOpened, events.TopicGateClosed:
		var e events.GateChanged
		if err := json.Unmarshal(data, &e); err == nil && e.Transition != nil {
			r := e.Transition.Reading
			return fmt.Sprintf("gate %s (sensor1 %s, sensor2 %s)",
				ui.RenderGate(e.Transition.To), formatDistance(r.Distance1), formatDistance(r.Distance2))
		}
	case events.TopicReading:
		var e events.ReadingReceived
		if err := json.Unmarshal(data, &e); err == nil {
			return fmt.Sprintf("reading sensor1 %s, sensor2 %s, light %.0f",
				formatDistance(e.Reading.Distance1), formatDistance(e.Reading.Distance2), e.Reading.Light)
		}
	case events.TopicLinkChanged:
		var e events.LinkChanged
		if err := json.Unmarshal(data, &e); err == nil {
			return "link " + ui.RenderLink(e.To)
		}
	case events.TopicLogCleared:
		return "history cleared"
	}
	return ui.RenderAccent(topic) + " " + strings.TrimSpace(string(data))
}

func init() {
	watchCmd.Flags().String("nats", "", "read events straight from this NATS URL instead of the API")
	watchCmd.Flags().StringSlice("topics", []string{events.TopicGateAll, events.TopicLinkChanged}, "topic patterns to follow")
	watchCmd.Flags().Bool("all", false, "follow every topic, including readings")
}
