package engine

import (
	"math/rand"
	"testing"

	"github.com/ashvale/driftsync/component"
	"github.com/ashvale/driftsync/core"
)

func TestQueryIntersection(t *testing.T) {
	w := NewWorld()
	c := &w.Components

	both := w.CreateEntity()
	c.Transforms.Set(both, component.TransformComponent{})
	c.Velocities.Set(both, component.VelocityComponent{})

	onlyTransform := w.CreateEntity()
	c.Transforms.Set(onlyTransform, component.TransformComponent{})

	onlyVelocity := w.CreateEntity()
	c.Velocities.Set(onlyVelocity, component.VelocityComponent{})

	results := w.Query().With(c.Transforms).With(c.Velocities).Execute()
	if len(results) != 1 {
		t.Fatalf("expected 1 match, got %d", len(results))
	}
	if results[0] != both {
		t.Errorf("expected %v, got %v", both, results[0])
	}
}

func TestQueryEmptyAndSingle(t *testing.T) {
	w := NewWorld()

	if got := w.Query().Execute(); len(got) != 0 {
		t.Errorf("query with no stores should match nothing, got %d", len(got))
	}

	e := w.CreateEntity()
	w.Components.Transforms.Set(e, component.TransformComponent{})
	if got := w.Query().With(w.Components.Transforms).Execute(); len(got) != 1 {
		t.Errorf("single-store query should return the store contents, got %d", len(got))
	}
}

func TestQueryExecuteCached(t *testing.T) {
	w := NewWorld()
	e := w.CreateEntity()
	w.Components.Transforms.Set(e, component.TransformComponent{})

	q := w.Query().With(w.Components.Transforms)
	first := q.Execute()
	w.Components.Transforms.Set(w.CreateEntity(), component.TransformComponent{})
	second := q.Execute()

	if len(first) != len(second) {
		t.Error("repeated Execute must return the cached snapshot")
	}

	defer func() {
		if recover() == nil {
			t.Error("expected panic when adding stores after Execute()")
		}
	}()
	q.With(w.Components.Velocities)
}

func TestQuerySnapshotSafeDuringDestroy(t *testing.T) {
	w := NewWorld()
	for i := 0; i < 20; i++ {
		e := w.CreateEntity()
		w.Components.Transforms.Set(e, component.TransformComponent{X: float64(i)})
		w.Components.Effects.Set(e, component.EffectComponent{})
	}

	// Destroying while ranging over the snapshot must not skip or crash
	results := w.Query().With(w.Components.Transforms).With(w.Components.Effects).Execute()
	destroyed := 0
	for _, e := range results {
		if w.DestroyEntity(e) {
			destroyed++
		}
	}
	if destroyed != 20 {
		t.Errorf("expected 20 destroys, got %d", destroyed)
	}
	if w.EntityCount() != 0 {
		t.Errorf("expected empty world, have %d entities", w.EntityCount())
	}
}

func TestQueryEachSkipsDead(t *testing.T) {
	w := NewWorld()
	alive := w.CreateEntity()
	doomed := w.CreateEntity()
	w.Components.Transforms.Set(alive, component.TransformComponent{})
	w.Components.Transforms.Set(doomed, component.TransformComponent{})

	// Simulate an earlier system destroying the entity this tick: the
	// generation check in Each must filter the stale handle out even if
	// a store still held it.
	w.registry.destroy(doomed)

	var seen []core.Entity
	w.Query().With(w.Components.Transforms).Each(func(e core.Entity) {
		seen = append(seen, e)
	})
	if len(seen) != 1 || seen[0] != alive {
		t.Errorf("Each must visit only live entities, saw %v", seen)
	}
}

// Randomized cross-check of the smallest-store-first intersection against a
// brute-force pass over every entity.
func TestQueryMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 50; trial++ {
		w := NewWorld()
		c := &w.Components

		type membership struct {
			transform, velocity, authority bool
		}
		truth := make(map[core.Entity]membership)

		for i := 0; i < 200; i++ {
			e := w.CreateEntity()
			m := membership{
				transform: rng.Intn(2) == 0,
				velocity:  rng.Intn(2) == 0,
				authority: rng.Intn(2) == 0,
			}
			if m.transform {
				c.Transforms.Set(e, component.TransformComponent{})
			}
			if m.velocity {
				c.Velocities.Set(e, component.VelocityComponent{})
			}
			if m.authority {
				c.Authorities.Set(e, component.AuthorityComponent{})
			}
			truth[e] = m
		}

		want := make(map[core.Entity]bool)
		for e, m := range truth {
			if m.transform && m.velocity && m.authority {
				want[e] = true
			}
		}

		got := w.Query().With(c.Transforms).With(c.Velocities).With(c.Authorities).Execute()
		if len(got) != len(want) {
			t.Fatalf("trial %d: expected %d matches, got %d", trial, len(want), len(got))
		}
		for _, e := range got {
			if !want[e] {
				t.Fatalf("trial %d: unexpected entity %v in results", trial, e)
			}
		}
	}
}
