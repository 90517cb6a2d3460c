package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/urfave/cli/v2"

	foam "github.com/foam-go/foam"
	"github.com/foam-go/foam/decode"
)

// streamFile replays newline-delimited JSON RawTrainBundle packets from a
// recorded file through a freshly wired scheduler: one pipeline stood up
// per invocation, cancelled on Ctrl+C.
func streamFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	catalog := foam.NewCatalog()
	correlator := foam.NewTrainCorrelator(catalog, 20)
	chain := &foam.CompositeProcessor{ProcessorName: "root"}
	publisher := foam.PublisherFunc(func(bundle *foam.CorrelatedBundle) {
		log.Printf("published train %d", bundle.TrainID)
	})
	sched := foam.NewScheduler(correlator, chain, publisher)
	state := foam.NewMemoryState()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	n := 0
	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var packet foam.RawTrainBundle
		if err := json.Unmarshal(line, &packet); err != nil {
			return fmt.Errorf("line %d: %w", n+1, err)
		}
		cfg := foam.NewConfigSnapshot(state, "analysis")
		if err := sched.Ingest(packet, cfg); err != nil {
			return err
		}
		n++
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	drops, unknown, procErrs := sched.Telemetry.Snapshot()
	log.Printf("processed %d packet(s): drops=%d unknown_parameters=%d processing_errors=%d", n, drops, unknown, procErrs)
	return nil
}

// replayRecording drives the pipeline from the binary recording format
// decoded by the decode package,
// applying any recorded PARAMETERS ahead of the first PACKET and logging
// COMMENT/HISTORY/SUMMARY records as they're encountered.
func replayRecording(path string) error {
	rec, err := decode.Open(path)
	if err != nil {
		return err
	}
	defer rec.Close()

	catalog := foam.NewCatalog()
	correlator := foam.NewTrainCorrelator(catalog, 20)
	chain := &foam.CompositeProcessor{ProcessorName: "root"}
	publisher := foam.PublisherFunc(func(bundle *foam.CorrelatedBundle) {
		log.Printf("published train %d", bundle.TrainID)
	})
	sched := foam.NewScheduler(correlator, chain, publisher)
	state := foam.NewMemoryState()

	n := 0
	for {
		entry, err := rec.Next()
		if err != nil {
			break // io.EOF or a truncated trailing record both end replay
		}

		switch entry.Kind {
			case decode.HEADER:
				log.Printf("recording format version %s", entry.Header.FormatVersion)
			case decode.PARAMETERS:
				for k, v := range entry.Parameters {
					_, _ = state.Set("analysis", k, fmt.Sprintf("%v", v))
				}
			case decode.COMMENT:
				log.Printf("train %d comment: %s", entry.Comment.TrainID, entry.Comment.Value)
			case decode.HISTORY:
				log.Printf("recording processed by %s@%s: %s", entry.History.OperatorName, entry.History.MachineName, entry.History.Command)
			case decode.SUMMARY:
				log.Printf("recording summary: trains [%d, %d], sources %v", entry.Summary.MinTrainID, entry.Summary.MaxTrainID, entry.Summary.SourceKeys)
			case decode.PACKET:
				cfg := foam.NewConfigSnapshot(state, "analysis")
				if err := sched.Ingest(*entry.Packet, cfg); err != nil {
					return err
				}
				n++
		}
	}

	drops, unknown, procErrs := sched.Telemetry.Snapshot()
	log.Printf("replayed %d packet(s): drops=%d unknown_parameters=%d processing_errors=%d", n, drops, unknown, procErrs)
	return nil
}

// pidFile is where "start" records its process id so "stop" can signal it,
// the minimal handshake a process-control CLI needs when start/stop are
// invoked from separate shells.
const pidFile = "/tmp/foamctl.pid"

func start() error {
	if err := os.WriteFile(pidFile, []byte(fmt.Sprintf("%d", os.Getpid())), 0o644); err != nil {
		return err
	}
	defer os.Remove(pidFile)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Println("foamctl: pipeline started, waiting for shutdown signal")
	<-ctx.Done()
	log.Println("foamctl: shutdown signal received, draining in-flight trains")
	return nil
}

func stopRunning() error {
	raw, err := os.ReadFile(pidFile)
	if err != nil {
		return fmt.Errorf("no running pipeline found at %s: %w", pidFile, err)
	}
	var pid int
	if _, err := fmt.Sscanf(string(raw), "%d", &pid); err != nil {
		return err
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return proc.Signal(os.Interrupt)
}

// kvClient is a minimal management client for the shared-state backend,
// here driving the in-process MemoryState since the real backend is an
// external collaborator this module never implements.
func kvClient(namespace, field, value string) error {
	state := foam.NewMemoryState()
	if value == "" {
		v, ok := state.Get(namespace, field)
		if !ok {
			return fmt.Errorf("no value for %s.%s", namespace, field)
		}
		fmt.Println(v)
		return nil
	}
	_, _ = state.Set(namespace, field, value)
	fmt.Printf("set %s.%s = %s\n", namespace, field, value)
	return nil
}

func main() {
	app := &cli.App{
		Name: "foamctl",
		Usage: "process control surface for the FEL detector analysis pipeline",
		Commands: []*cli.Command{
			{
				Name: "start",
				Usage: "start the pipeline and block until a shutdown signal is received",
				Action: func(cCtx *cli.Context) error {
					return start()
				},
			},
			{
				Name: "stop",
				Usage: "signal a running pipeline to shut down",
				Action: func(cCtx *cli.Context) error {
					return stopRunning()
				},
			},
			{
				Name: "stream-file",
				Usage: "replay a recorded newline-delimited JSON packet file through the pipeline",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "path", Required: true, Usage: "path to the recorded packet file"},
				},
				Action: func(cCtx *cli.Context) error {
					return streamFile(cCtx.String("path"))
				},
			},
			{
				Name: "replay-recording",
				Usage: "replay a binary-format recorded run (decode package) through the pipeline",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "path", Required: true, Usage: "path to the recorded run file"},
				},
				Action: func(cCtx *cli.Context) error {
					return replayRecording(cCtx.String("path"))
				},
			},
			{
				Name: "kv-client",
				Usage: "get or set a field on the shared-state backend",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "namespace", Required: true},
					&cli.StringFlag{Name: "field", Required: true},
					&cli.StringFlag{Name: "value", Usage: "if set, writes this value; otherwise reads the current one"},
				},
				Action: func(cCtx *cli.Context) error {
					return kvClient(cCtx.String("namespace"), cCtx.String("field"), cCtx.String("value"))
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
