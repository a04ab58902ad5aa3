package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	inputredis "continuitygraph/internal/input/redis"
	"continuitygraph/internal/transform/snapshot"
)

// runEnqueue validates a snapshot file and pushes it onto the work queue as JSON.
func runEnqueue(args []string) int {
	fs := flag.NewFlagSet("enqueue", flag.ContinueOnError)
	input := fs.String("input", "", "Snapshot file (JSON or YAML)")
	configArg := fs.String("config", "", "Config file for the Redis queue")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if strings.TrimSpace(*input) == "" {
		fmt.Fprintln(os.Stderr, "enqueue: -input is required")
		return 2
	}

	cfg, _ := loadConfig(*configArg)
	snap, err := snapshot.LoadFile(*input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load snapshot: %v\n", err)
		return 1
	}
	payload, err := snapshot.Encode(snap)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to encode snapshot: %v\n", err)
		return 1
	}

	r := cfg.Continuity.Input.Redis
	consumer, err := inputredis.NewConsumer(inputredis.Config{
		Addr:     r.Addr,
		Password: r.Password,
		DB:       r.DB,
		Key:      r.Key,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect queue: %v\n", err)
		return 1
	}
	defer consumer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := consumer.Push(ctx, payload); err != nil {
		fmt.Fprintf(os.Stderr, "failed to enqueue snapshot: %v\n", err)
		return 1
	}
	depth, _ := consumer.Depth(ctx)
	fmt.Fprintf(os.Stderr, "enqueued snapshot digest=%s key=%s depth=%d\n", snapshot.Digest(payload), consumer.Key(), depth)
	return 0
}
