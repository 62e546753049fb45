// Package pkg provides the core libraries for villas floor plans.
//
// # Overview
//
// A plan is a rectangular grid of tiles (wall, floor, door, stair) carved by
// placing rooms and loose tiles. The pkg directory is organized as:
//
//  1. [villa] - Tiles, positions, grids and room validation
//  2. [plan] - Placed rooms, region analysis and path finding
//  3. [blueprint] - TOML, YAML and JSON plan descriptions
//  4. [render] - Text, SVG, PNG, PDF, JSON and region-graph output
//  5. [pipeline] - Orchestration (load → analyze → render) with caching
//  6. [cache], [store] - Result caching and blueprint persistence
//  7. [server] - HTTP API over the pipeline and store
//
// # Architecture
//
// The typical data flow:
//
//	blueprint file (TOML/YAML/JSON)
//	         ↓
//	    [blueprint] package (decode, build)
//	         ↓
//	    [plan] package (rooms on a [villa] grid, regions, passages)
//	         ↓
//	    [render] package (txt, SVG, PNG, PDF, JSON, DOT)
//
// # Quick Start
//
//	bp, err := blueprint.Load("wing.toml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	p, err := blueprint.Build(bp)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(render.Text(p.Grid()))
package pkg
