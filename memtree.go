package rowan

import "fmt"

type memNode struct {
	parent   Entity
	children []Entity
}

// MemTree is a plain in-memory EntityTree: entity handles, parent links, and
// ordered child lists, nothing else. It backs the CLI and tests, and suits
// hosts without an ECS of their own.
type MemTree struct {
	nodes   map[Entity]*memNode
	counter Entity
}

func NewMemTree() *MemTree {
	return &MemTree{nodes: make(map[Entity]*memNode)}
}

func (t *MemTree) SpawnEmpty() Entity {
	t.counter++
	t.nodes[t.counter] = &memNode{}
	return t.counter
}

func (t *MemTree) Alive(entity Entity) bool {
	_, ok := t.nodes[entity]
	return ok
}

// Children returns the ordered children of an entity. The slice is owned by
// the tree.
func (t *MemTree) Children(entity Entity) []Entity {
	if n, ok := t.nodes[entity]; ok {
		return n.children
	}
	return nil
}

// Parent returns an entity's parent, or NoEntity when detached.
func (t *MemTree) Parent(entity Entity) Entity {
	if n, ok := t.nodes[entity]; ok {
		return n.parent
	}
	return NoEntity
}

func (t *MemTree) isAncestor(candidate, of Entity) bool {
	for cur := of; cur != NoEntity; {
		if cur == candidate {
			return true
		}
		n, ok := t.nodes[cur]
		if !ok {
			return false
		}
		cur = n.parent
	}
	return false
}

func (t *MemTree) InsertChild(parent Entity, index int, child Entity) error {
	pn, ok := t.nodes[parent]
	if !ok {
		return fmt.Errorf("parent entity %d is not alive", parent)
	}
	cn, ok := t.nodes[child]
	if !ok {
		return fmt.Errorf("child entity %d is not alive", child)
	}
	if t.isAncestor(child, parent) {
		return fmt.Errorf("inserting entity %d under %d would create a cycle", child, parent)
	}
	if cn.parent != NoEntity {
		t.detach(child)
	}
	if index < 0 || index > len(pn.children) {
		index = len(pn.children)
	}
	pn.children = append(pn.children, NoEntity)
	copy(pn.children[index+1:], pn.children[index:])
	pn.children[index] = child
	cn.parent = parent
	return nil
}

func (t *MemTree) detach(child Entity) {
	cn := t.nodes[child]
	pn, ok := t.nodes[cn.parent]
	if ok {
		for i, c := range pn.children {
			if c == child {
				copy(pn.children[i:], pn.children[i+1:])
				pn.children = pn.children[:len(pn.children)-1]
				break
			}
		}
	}
	cn.parent = NoEntity
}

func (t *MemTree) Despawn(entity Entity) {
	n, ok := t.nodes[entity]
	if !ok {
		return
	}
	if n.parent != NoEntity {
		t.detach(entity)
	}
	t.despawnSubtree(entity)
}

func (t *MemTree) despawnSubtree(entity Entity) {
	n, ok := t.nodes[entity]
	if !ok {
		return
	}
	for _, c := range n.children {
		t.despawnSubtree(c)
	}
	delete(t.nodes, entity)
}
