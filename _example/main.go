package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/hupe1980/genarena"
	"github.com/hupe1980/genarena/blobstore"
	"github.com/hupe1980/genarena/snapshot"
	"github.com/hupe1980/genarena/testutil"
)

type node struct {
	ID    int               `json:"id"`
	Edges []genarena.Handle `json:"edges"`
}

func main() {
	seed := int64(4711)
	size := 50000

	rng := testutil.NewRNG(seed)
	nodes := genarena.New[node](genarena.WithCapacity(size))

	fmt.Println("--- Build ---")
	start := time.Now()

	handles := make([]genarena.Handle, 0, size)
	for i := range size {
		h := nodes.InsertWith(func(genarena.Handle) node {
			n := node{ID: i}
			if len(handles) > 0 {
				n.Edges = append(n.Edges, handles[rng.Intn(len(handles))])
			}
			return n
		})
		handles = append(handles, h)
	}

	// Drop every tenth node. Edges pointing at them go stale.
	for i := 0; i < len(handles); i += 10 {
		nodes.Remove(handles[i])
	}

	stale := 0
	for _, n := range nodes.All() {
		for _, e := range n.Edges {
			if !nodes.Contains(e) {
				stale++
			}
		}
	}

	fmt.Println("Nodes:", nodes.Len())
	fmt.Println("Stale edges:", stale)
	fmt.Println("Stats:", nodes.Stats())
	fmt.Println("Time:", time.Since(start))

	fmt.Println("--- Snapshot ---")
	dir, err := os.MkdirTemp("", "genarena-example-")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	ctx := context.Background()
	store := snapshot.NewStore(blobstore.NewLocalStore(dir),
		snapshot.WithStoreCompression(snapshot.CompressionZstd),
	)

	start = time.Now()
	info, err := snapshot.Save(ctx, store, "graph", nodes)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Saved version %d: %d bytes (raw %d)\n", info.Version, info.Size, info.Header.RawSize)

	restored, _, err := snapshot.Load[node](ctx, store, "graph")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("Restored:", restored.Stats())
	fmt.Println("Same free slot next:", restored.Insert(node{}) == nodes.Insert(node{}))
	fmt.Println("Time:", time.Since(start))
}
