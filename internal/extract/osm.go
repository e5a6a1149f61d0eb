package extract

import (
	"context"
	"os"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/gridline/roadrank/internal/model"
)

// readOSM scans an OSM extract twice: once for highway ways, once for the
// node coordinates those ways reference.
func readOSM(ctx context.Context, path string, pbf bool) ([]model.Way, error) {
	type rawWay struct {
		id    int64
		nodes []int64
		tags  map[string]string
	}

	var ways []rawWay
	nodesSeen := make(map[int64]struct{})

	err := scanOSM(ctx, path, pbf, func(obj osm.Object) {
		way, ok := obj.(*osm.Way)
		if !ok {
			return
		}
		tags := way.TagMap()
		if _, ok := tags["highway"]; !ok {
			return
		}
		raw := rawWay{id: int64(way.ID), nodes: make([]int64, len(way.Nodes)), tags: tags}
		for i, n := range way.Nodes {
			raw.nodes[i] = int64(n.ID)
			nodesSeen[int64(n.ID)] = struct{}{}
		}
		ways = append(ways, raw)
	})
	if err != nil {
		return nil, err
	}

	coords := make(map[int64]model.Point, len(nodesSeen))
	err = scanOSM(ctx, path, pbf, func(obj osm.Object) {
		node, ok := obj.(*osm.Node)
		if !ok {
			return
		}
		if _, want := nodesSeen[int64(node.ID)]; !want {
			return
		}
		coords[int64(node.ID)] = model.Point{Lat: node.Lat, Lon: node.Lon}
	})
	if err != nil {
		return nil, err
	}

	result := make([]model.Way, 0, len(ways))
	for _, raw := range ways {
		points := make([]model.Point, 0, len(raw.nodes))
		for _, id := range raw.nodes {
			p, ok := coords[id]
			if !ok {
				return nil, eris.Wrapf(ErrParse, "way %d references missing node %d", raw.id, id)
			}
			points = append(points, p)
		}
		result = append(result, model.Way{ID: raw.id, Points: points, Tags: raw.tags})
	}

	zap.L().Info("extract: scanned OSM input",
		zap.String("path", path),
		zap.Int("ways", len(result)),
		zap.Int("nodes", len(coords)),
	)
	return result, nil
}

// scanOSM runs one full pass over the file, invoking fn per object.
func scanOSM(ctx context.Context, path string, pbf bool, fn func(osm.Object)) error {
	f, err := os.Open(path)
	if err != nil {
		return eris.Wrapf(err, "extract: open %s", path)
	}
	defer f.Close()

	var scanner osm.Scanner
	if pbf {
		scanner = osmpbf.New(ctx, f, 4)
	} else {
		scanner = osmxml.New(ctx, f)
	}
	defer scanner.Close()

	for scanner.Scan() {
		fn(scanner.Object())
	}
	if err := scanner.Err(); err != nil {
		return eris.Wrapf(ErrParse, "scan %s: %v", path, err)
	}
	return nil
}
