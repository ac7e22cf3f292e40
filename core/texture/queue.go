package texture

import "container/list"

// uploadQueue is the FIFO of textures awaiting upload. Each texture remembers its list
// element so unload/release can drop it without a scan.
//
// uploadQueue is not synchronized; the Manager's mutex guards every call.
type uploadQueue struct {
	items *list.List
}

func newUploadQueue() *uploadQueue {
	return &uploadQueue{items: list.New()}
}

// push appends t. A texture already queued is left in place.
func (q *uploadQueue) push(t *ManagedTexture) bool {
	if t.elem != nil {
		return false
	}
	t.elem = q.items.PushBack(t)
	return true
}

// pop removes and returns the oldest texture, or nil.
func (q *uploadQueue) pop() *ManagedTexture {
	front := q.items.Front()
	if front == nil {
		return nil
	}
	t := q.items.Remove(front).(*ManagedTexture)
	t.elem = nil
	return t
}

// remove drops t from the queue and reports whether it was queued.
func (q *uploadQueue) remove(t *ManagedTexture) bool {
	if t.elem == nil {
		return false
	}
	q.items.Remove(t.elem)
	t.elem = nil
	return true
}

// drain empties the queue and returns its contents in FIFO order.
func (q *uploadQueue) drain() []*ManagedTexture {
	out := make([]*ManagedTexture, 0, q.items.Len())
	for t := q.pop(); t != nil; t = q.pop() {
		out = append(out, t)
	}
	return out
}

func (q *uploadQueue) len() int {
	return q.items.Len()
}
