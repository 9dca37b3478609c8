// Package intersection decides, tick by tick, which cars may enter the
// shared stop area. Cars first dwell for their stop duration, then queue in
// the order they finished dwelling. The head of the queue always goes; the
// second car goes alongside it when the right-of-way table allows.
package intersection

import (
	"github.com/sprasad796/Stop-And-Go/internal/geometry"
	"github.com/sprasad796/Stop-And-Go/internal/monitoring"
	"github.com/sprasad796/Stop-And-Go/internal/motion"
	"github.com/sprasad796/Stop-And-Go/internal/vehicle"
)

// decision is the cached right of way of the second car in the queue.
type decision struct {
	seq     int // 0 when unset
	action  Action
	canMove bool
}

// Arbitrator owns the priority queue. It reads committed car state and sets
// each car's gate for the coming update.
type Arbitrator struct {
	layout   geometry.Layout
	queue    PriorityQueue
	second   decision
	maxQueue int
	log      *monitoring.Logger
}

// NewArbitrator returns an arbitrator for the layout. log may be nil.
func NewArbitrator(l geometry.Layout, log *monitoring.Logger) *Arbitrator {
	return &Arbitrator{layout: l, log: log}
}

// Queue returns the queued sequences, head first.
func (a *Arbitrator) Queue() []int { return a.queue.Items() }

// MaxQueue is the longest the queue has been.
func (a *Arbitrator) MaxQueue() int { return a.maxQueue }

// Evaluate runs one arbitration pass over cars in sequence order.
func (a *Arbitrator) Evaluate(cars []*vehicle.State) {
	for _, c := range cars {
		if c.Ended {
			c.Gate = vehicle.GateProceed
			continue
		}

		c.Overlap = a.layout.Overlaps(c.Pose)
		e := c.Entry()
		c.Phase = e.Phase
		if !c.SpeedOverride {
			c.Speed, c.Acceleration = e.Speed, e.Acceleration
		}

		switch {
		case c.Overlap && e.Phase == motion.PhaseDecel:
			// Still braking into the stop line; not waiting yet.
			c.Gate = vehicle.GateProceed
		case c.Overlap && c.StopWaitDuration() < c.StopDuration:
			c.StopWaitTicks++
			c.Gate = vehicle.GateDwell
			c.Locked = false
			hold(c)
		default:
			a.admit(c, cars)
		}
		c.AtIntersection = a.queue.Contains(c.Sequence)
	}
	if n := a.queue.Len(); n > a.maxQueue {
		a.maxQueue = n
	}
}

func hold(c *vehicle.State) {
	c.Speed, c.Acceleration = 0, 0
	c.Phase = motion.PhaseStop
}

func (a *Arbitrator) admit(c *vehicle.State, cars []*vehicle.State) {
	if c.Overlap && c.StopWaitDuration() >= c.StopDuration {
		if a.queue.Push(c.Sequence) {
			a.log.Debugf("car %d queued %v", c.Sequence, a.queue.Items())
		}
		a.resolveSecond(cars)
	}

	head, hasHead := a.queue.Head()
	if c.Overlap {
		if (hasHead && head == c.Sequence) || (a.second.seq == c.Sequence && a.second.canMove) {
			c.Gate = vehicle.GateProceed
			c.Locked = true
			return
		}
		c.Gate = vehicle.GateQueued
		c.Locked = false
		c.StopWaitTicks++
		hold(c)
		return
	}

	c.Gate = vehicle.GateProceed
	c.Locked = false
	c.StopWaitTicks = 0
	switch {
	case hasHead && head == c.Sequence:
		a.queue.Pop()
		a.second = decision{}
		a.log.Debugf("car %d cleared, queue %v", c.Sequence, a.queue.Items())
	case a.queue.Remove(c.Sequence):
		// A car admitted alongside the head can clear first.
		a.second = decision{}
		a.log.Debugf("car %d cleared behind the head, queue %v", c.Sequence, a.queue.Items())
	}
}

// resolveSecond recomputes whether the second car may go with the head.
func (a *Arbitrator) resolveSecond(cars []*vehicle.State) {
	a.second = decision{}
	headSeq, ok := a.queue.Head()
	if !ok {
		return
	}
	secondSeq, ok := a.queue.Second()
	if !ok {
		return
	}
	head, second := find(cars, headSeq), find(cars, secondSeq)
	if head == nil || second == nil {
		return
	}

	act := RightOfWay(second.Turn, RelationOf(secondSeq, headSeq), head.Turn)
	can := act == NoAction ||
		(act == WaitCrossCenter && a.layout.CrossedCenter(headSeq, head.Turn, head.Pose.Pos))
	a.second = decision{seq: secondSeq, action: act, canMove: can}
	a.log.Debugf("car %d behind car %d: %s (go=%v)", secondSeq, headSeq, act, can)
}

func find(cars []*vehicle.State, seq int) *vehicle.State {
	for _, c := range cars {
		if c.Sequence == seq {
			return c
		}
	}
	return nil
}
