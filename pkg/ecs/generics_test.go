package ecs

import "testing"

func TestGenericAddAndGet(t *testing.T) {
	em := NewEntityManager()
	id := em.CreateEntity()
	AddComponent(em, id, &testPositionComponent{X: 3, Y: 4})

	pos, ok := GetComponent[*testPositionComponent](em, id)
	if !ok {
		t.Fatal("component should be found")
	}
	if pos.X != 3 || pos.Y != 4 {
		t.Errorf("got (%v, %v), want (3, 4)", pos.X, pos.Y)
	}

	if _, ok := GetComponent[*testVelocityComponent](em, id); ok {
		t.Error("velocity component should not be found")
	}
	if _, ok := GetComponent[*testPositionComponent](em, 999); ok {
		t.Error("missing entity should not return a component")
	}
}

func TestGenericAndReflectInterop(t *testing.T) {
	em := NewEntityManager()
	id := em.CreateEntity()
	// 反射接口添加，泛型接口读取
	em.AddComponent(id, &testVelocityComponent{VX: 1})

	if !HasComponent[*testVelocityComponent](em, id) {
		t.Fatal("generic HasComponent should see reflect-added component")
	}
	RemoveComponent[*testVelocityComponent](em, id)
	if HasComponent[*testVelocityComponent](em, id) {
		t.Error("component should be removed")
	}
}

func TestQueriesAreOrderedByCreation(t *testing.T) {
	em := NewEntityManager()
	var want []EntityID
	for i := 0; i < 64; i++ {
		id := em.CreateEntity()
		AddComponent(em, id, &testPositionComponent{X: float64(i)})
		if i%3 == 0 {
			AddComponent(em, id, &testVelocityComponent{})
			want = append(want, id)
		}
	}

	// 多次查询结果必须完全一致且升序
	for round := 0; round < 5; round++ {
		got := GetEntitiesWith2[*testPositionComponent, *testVelocityComponent](em)
		if len(got) != len(want) {
			t.Fatalf("round %d: got %d entities, want %d", round, len(got), len(want))
		}
		for i := range got {
			if got[i] != want[i] {
				t.Fatalf("round %d: index %d got %d, want %d", round, i, got[i], want[i])
			}
		}
	}
}

func TestIDsAreNeverReused(t *testing.T) {
	em := NewEntityManager()
	a := em.CreateEntity()
	em.DestroyEntity(a)
	em.RemoveMarkedEntities()
	em.Clear()
	b := em.CreateEntity()

	if b == a {
		t.Fatalf("id %d was reused", a)
	}
	if em.Exists(a) {
		t.Error("destroyed id should not exist")
	}
}

func TestDestroyTwiceIsSafe(t *testing.T) {
	em := NewEntityManager()
	id := em.CreateEntity()
	em.DestroyEntity(id)
	em.DestroyEntity(id)

	if !em.IsMarkedForDestroy(id) {
		t.Error("entity should be marked")
	}
	if removed := em.RemoveMarkedEntities(); removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if em.Count() != 0 {
		t.Errorf("count = %d, want 0", em.Count())
	}
}
