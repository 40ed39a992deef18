package main

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"marsrover/internal/live"
	"marsrover/internal/view"
)

var (
	camera       string
	rover        string
	fetchTimeout time.Duration
)

var apodCmd = &cobra.Command{
	Use:   "apod",
	Short: "Show today's astronomy picture of the day",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		apod, err := newClient().APOD(ctx)
		if err != nil {
			return err
		}
		return printValue(cmd.OutOrStdout(), output, apod)
	},
}

var manifestCmd = &cobra.Command{
	Use:   "manifest <rover>",
	Short: "Show a rover's mission manifest",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		m, err := newClient().Manifest(ctx, args[0])
		if err != nil {
			return err
		}
		return printValue(cmd.OutOrStdout(), output, m)
	},
}

var photosCmd = &cobra.Command{
	Use:   "photos <rover>",
	Short: "List a rover's latest photos",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		photos, err := newClient().LatestPhotos(ctx, args[0])
		if err != nil {
			return err
		}
		return printValue(cmd.OutOrStdout(), output, view.FilterByCamera(photos, camera))
	},
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the page for a rover once every slice has loaded",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		initial := view.DefaultState()
		initial.CameraType = view.NormalizeCamera(camera)
		if rover != "" {
			if !slices.Contains(initial.RoverNames, rover) {
				return fmt.Errorf("%w: %q", view.ErrUnknownRover, rover)
			}
			initial.SelectedRover = rover
		}

		var last string
		sink := func(markup string) { last = markup }
		ctrl := live.NewController(newClient(), initial, sink, logger.Named("live"), live.WithFetchTimeout(fetchTimeout))
		defer ctrl.Close()

		ctrl.Start()
		if err := ctrl.Settle(ctx); err != nil {
			return fmt.Errorf("waiting for data: %w", err)
		}

		// A fetch that failed leaves its placeholder in place.
		state := ctrl.State()
		if _, ok := state.Manifest(state.SelectedRover); !ok {
			logger.Warn("manifest not loaded", zap.String("rover", state.SelectedRover))
		}

		_, err := fmt.Fprintln(cmd.OutOrStdout(), last)
		return err
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Open a live session and print every render frame",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		q := url.Values{}
		if camera != "" {
			q.Set("camera-type", camera)
		}
		wsURL, err := websocketURL(baseURL, "/ws", q.Encode())
		if err != nil {
			return err
		}

		conn, _, err := websocket.DefaultDialer.DialContext(cmd.Context(), wsURL, nil)
		if err != nil {
			return fmt.Errorf("dial %s: %w", wsURL, err)
		}
		defer conn.Close()
		logger.Info("connected", zap.String("url", wsURL))

		stop := context.AfterFunc(cmd.Context(), func() { _ = conn.Close() })
		defer stop()

		if rover != "" {
			if err := conn.WriteJSON(live.Event{Type: live.EventSelectRover, Rover: rover}); err != nil {
				return err
			}
		}
		for {
			var f live.Frame
			if err := conn.ReadJSON(&f); err != nil {
				return err
			}
			if err := printValue(cmd.OutOrStdout(), output, f); err != nil {
				return err
			}
		}
	},
}

func init() {
	photosCmd.Flags().StringVar(&camera, "camera", view.CameraAll, "camera filter, e.g. NAVCAM")
	for _, c := range []*cobra.Command{renderCmd, watchCmd} {
		c.Flags().StringVar(&camera, "camera", view.CameraAll, "camera filter, e.g. NAVCAM")
		c.Flags().StringVar(&rover, "rover", "", "rover tab to select (default Curiosity)")
	}
	renderCmd.Flags().DurationVar(&fetchTimeout, "fetch-timeout", 10*time.Second, "give up on one slice after this long and render its placeholder")
}
