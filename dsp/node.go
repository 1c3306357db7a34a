package dsp

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
)

type (
	// Node is one unit of the audio graph. The set of node kinds is closed:
	// a node is a plain mixer, a voice, a filter or a looper, and always sums
	// its inputs before applying its own processing.
	//
	// The inputs are a copy-on-write slice: Connect and Disconnect build a new
	// slice under a mutex and publish it with an atomic swap, so the audio
	// goroutine iterating the old slice is never disturbed and never waits.
	Node struct {
		kind   Kind
		voice  *Voice
		filter *Filter
		looper *Looper

		mu     sync.Mutex
		inputs atomic.Pointer[[]*Node]
	}

	// Kind tags the variant of a Node.
	Kind int
)

const (
	MixerKind Kind = iota
	VoiceKind
	FilterKind
	LooperKind
)

func (k Kind) String() string {
	switch k {
	case MixerKind:
		return "mixer"
	case VoiceKind:
		return "voice"
	case FilterKind:
		return "filter"
	case LooperKind:
		return "looper"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func NewMixer() *Node               { return &Node{kind: MixerKind} }
func NewVoiceNode(v *Voice) *Node   { return &Node{kind: VoiceKind, voice: v} }
func NewFilterNode(f *Filter) *Node { return &Node{kind: FilterKind, filter: f} }
func NewLooperNode(l *Looper) *Node { return &Node{kind: LooperKind, looper: l} }
func (n *Node) Kind() Kind          { return n.kind }
func (n *Node) Voice() *Voice       { return n.voice }
func (n *Node) Filter() *Filter     { return n.filter }
func (n *Node) Looper() *Looper     { return n.looper }

// Connect adds child to the inputs of the node. Connecting a node that is
// already an input does nothing.
func (n *Node) Connect(child *Node) {
	if child == nil || child == n {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	old := n.Inputs()
	if slices.Contains(old, child) {
		return
	}
	next := make([]*Node, len(old), len(old)+1)
	copy(next, old)
	next = append(next, child)
	n.inputs.Store(&next)
}

// Disconnect removes child from the inputs of the node, if present.
func (n *Node) Disconnect(child *Node) {
	n.mu.Lock()
	defer n.mu.Unlock()
	old := n.Inputs()
	i := slices.Index(old, child)
	if i < 0 {
		return
	}
	next := make([]*Node, 0, len(old)-1)
	next = append(next, old[:i]...)
	next = append(next, old[i+1:]...)
	n.inputs.Store(&next)
}

// DisconnectAll removes every input of the node.
func (n *Node) DisconnectAll() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.inputs.Store(nil)
}

// Inputs returns the current inputs. The returned slice must not be modified.
func (n *Node) Inputs() []*Node {
	if p := n.inputs.Load(); p != nil {
		return *p
	}
	return nil
}

// Tick renders one sample of the node and, recursively, of its inputs.
// Voices that have gone idle are skipped.
func (n *Node) Tick() float32 {
	var sum float32
	if p := n.inputs.Load(); p != nil {
		for _, c := range *p {
			sum += c.Tick()
		}
	}
	switch n.kind {
	case VoiceKind:
		if n.voice.IsPlaying() {
			sum += n.voice.Tick()
		}
	case FilterKind:
		sum = n.filter.Process(sum)
	case LooperKind:
		sum = n.looper.Process(sum)
	}
	return sum
}
