package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/five82/albumdeck/internal/albums"
	"github.com/five82/albumdeck/internal/albumsapi"
	"github.com/five82/albumdeck/internal/app"
	"github.com/five82/albumdeck/internal/logging"
	"github.com/five82/albumdeck/internal/request"
)

// callCommand issues one request through the same client the TUI uses.
func callCommand() *cli.Command {
	return &cli.Command{
		Name:      "call",
		Usage:     "Send one request to the albums API and print the reply",
		ArgsUsage: "<method> <path>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "JSON request parameters (ignored for GET)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 2 {
				return fmt.Errorf("call needs <method> <path>, got %d arguments", cmd.Args().Len())
			}
			method, err := request.ParseMethod(cmd.Args().Get(0))
			if err != nil {
				return err
			}

			var params any
			if data := strings.TrimSpace(cmd.String("data")); data != "" {
				if !json.Valid([]byte(data)) {
					return fmt.Errorf("--data is not valid JSON")
				}
				params = json.RawMessage(data)
			}

			session, err := app.Open(optionsFrom(cmd))
			if err != nil {
				return err
			}
			defer session.Close()

			resp, err := session.Factory.New(cmd.Args().Get(1)).Call(ctx, params, method)
			if err != nil {
				return err
			}
			return printResponse(os.Stdout, resp)
		},
	}
}

// printResponse writes the indented body. A reply carrying errors is
// printed and then reported as a rejection.
func printResponse(w io.Writer, resp *request.Response) error {
	var out bytes.Buffer
	if err := json.Indent(&out, resp.Body, "", "  "); err != nil {
		out.Reset()
		out.Write(resp.Body)
	}
	out.WriteByte('\n')
	if _, err := w.Write(out.Bytes()); err != nil {
		return err
	}
	if resp.HasErrors {
		return fmt.Errorf("%w: %s", albums.ErrRejected, strings.Join(resp.Errors, "; "))
	}
	return nil
}

// mockServerCommand serves the in-memory albums API.
func mockServerCommand() *cli.Command {
	return &cli.Command{
		Name:  "mock-server",
		Usage: "Serve an in-memory albums API seeded with sample albums",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "listen address",
				Value: ":8081",
			},
			&cli.UintFlag{
				Name:  "seed",
				Usage: "seed for random albums",
				Value: 1,
			},
			&cli.BoolFlag{
				Name:  "empty",
				Usage: "start without the sample albums",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			level, err := logging.ParseLevel(cmd.String("log-level"))
			if err != nil {
				return err
			}
			logger := logging.New(os.Stderr, level)

			seed := albumsapi.SampleAlbums()
			if cmd.Bool("empty") {
				seed = nil
			}
			repo := albumsapi.NewRepository(cmd.Uint("seed"), seed...)
			handler := albumsapi.NewHandler(repo, logger).Router()

			err = albumsapi.Serve(ctx, cmd.String("addr"), handler, logger)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}
