package system

import (
	"testing"
	"time"

	"github.com/ashvale/driftsync/component"
	"github.com/ashvale/driftsync/core"
	"github.com/ashvale/driftsync/engine"
)

const tickDt = time.Second / 60

func TestMovementIntegratesOwnedEntities(t *testing.T) {
	w := engine.NewWorld()
	w.AddSystem(NewMovementSystem(w, "client-1"))

	e := w.CreateEntity()
	w.Components.Transforms.Set(e, component.TransformComponent{X: 10, Y: 10})
	w.Components.Velocities.Set(e, component.VelocityComponent{VX: 60, VY: -120})
	w.Components.Authorities.Set(e, component.AuthorityComponent{
		OwnerID: "client-1", Level: component.ClientPredictive,
	})

	w.Update(tickDt)

	tr, _ := w.Components.Transforms.Get(e)
	if tr.X != 11 || tr.Y != 8 {
		t.Errorf("expected (11, 8) after one tick, got (%v, %v)", tr.X, tr.Y)
	}
}

func TestMovementSkipsServerAuthority(t *testing.T) {
	w := engine.NewWorld()
	w.AddSystem(NewMovementSystem(w, "client-1"))

	e := w.CreateEntity()
	w.Components.Transforms.Set(e, component.TransformComponent{X: 5, Y: 5})
	w.Components.Velocities.Set(e, component.VelocityComponent{VX: 100, VY: 100})
	w.Components.Authorities.Set(e, component.AuthorityComponent{
		OwnerID: core.ServerID, Level: component.ServerAuthoritative,
	})

	w.Update(tickDt)

	tr, _ := w.Components.Transforms.Get(e)
	if tr.X != 5 || tr.Y != 5 {
		t.Errorf("server-owned entity must not move through game logic, got (%v, %v)", tr.X, tr.Y)
	}
}

func TestMovementSkipsForeignAndUnowned(t *testing.T) {
	w := engine.NewWorld()
	w.AddSystem(NewMovementSystem(w, "client-1"))

	foreign := w.CreateEntity()
	w.Components.Transforms.Set(foreign, component.TransformComponent{})
	w.Components.Velocities.Set(foreign, component.VelocityComponent{VX: 60})
	w.Components.Authorities.Set(foreign, component.AuthorityComponent{
		OwnerID: "client-2", Level: component.ClientPredictive,
	})

	// No authority component at all also means no movement
	bare := w.CreateEntity()
	w.Components.Transforms.Set(bare, component.TransformComponent{})
	w.Components.Velocities.Set(bare, component.VelocityComponent{VX: 60})

	w.Update(tickDt)

	if tr, _ := w.Components.Transforms.Get(foreign); tr.X != 0 {
		t.Errorf("foreign-owned entity moved to X=%v", tr.X)
	}
	if tr, _ := w.Components.Transforms.Get(bare); tr.X != 0 {
		t.Errorf("unowned entity moved to X=%v", tr.X)
	}
}

func TestExpirySweep(t *testing.T) {
	w := engine.NewWorld()
	w.AddSystem(NewExpirySystem(w))
	now := w.Resources.Time.Now

	expired := w.CreateEntity()
	w.Components.Effects.Set(expired, component.EffectComponent{ExpiresAt: now.Add(5 * time.Millisecond)})

	alive := w.CreateEntity()
	w.Components.Effects.Set(alive, component.EffectComponent{ExpiresAt: now.Add(time.Hour)})

	// The tick advances time past the first effect's deadline
	w.Update(tickDt)

	if w.IsAlive(expired) {
		t.Error("expired effect should be destroyed")
	}
	if !w.IsAlive(alive) {
		t.Error("unexpired effect must survive")
	}
}

func TestExpirySweepManyAtOnce(t *testing.T) {
	w := engine.NewWorld()
	w.AddSystem(NewExpirySystem(w))
	now := w.Resources.Time.Now

	for i := 0; i < 50; i++ {
		e := w.CreateEntity()
		w.Components.Effects.Set(e, component.EffectComponent{ExpiresAt: now})
	}

	w.Update(tickDt)

	if w.EntityCount() != 0 {
		t.Errorf("all expired effects should be swept in one pass, %d remain", w.EntityCount())
	}
}
