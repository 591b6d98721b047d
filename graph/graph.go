// Copyright 2025 Timewire ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package graph provides the public API for timing graphs: the
// heterogeneous pin graph with its three edge relations, the homogeneous
// baseline graph, and the topological propagation schedule.
package graph

import (
	"github.com/timewire-ml/timewire/internal/graph"
	"github.com/timewire-ml/timewire/tensor"
)

// Relation identifies one of the three timing edge relations.
type Relation = graph.Relation

// Relation constants.
const (
	NetOut  Relation = graph.NetOut
	NetIn   Relation = graph.NetIn
	CellOut Relation = graph.CellOut
)

// EdgeSet holds the edges of one relation together with optional
// per-edge features.
type EdgeSet[B tensor.Backend] = graph.EdgeSet[B]

// Graph is the heterogeneous timing graph over pin nodes.
type Graph[B tensor.Backend] = graph.Graph[B]

// Homograph is the single-relation graph the deep baseline runs on.
type Homograph[B tensor.Backend] = graph.Homograph[B]

// StageKind tags a schedule level with the kind of propagation step it
// belongs to.
type StageKind = graph.StageKind

// Stage kind constants.
const (
	StagePrimary StageKind = graph.StagePrimary
	StageNet     StageKind = graph.StageNet
	StageCell    StageKind = graph.StageCell
)

// Level is one topological level of the schedule.
type Level = graph.Level

// Schedule is the topological propagation order for a timing graph.
type Schedule = graph.Schedule
