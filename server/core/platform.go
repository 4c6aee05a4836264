package core

import (
	"github.com/automoto/anticipation-mp/network"
	"github.com/automoto/anticipation-mp/shared/leveldata"
	"github.com/automoto/anticipation-mp/shared/movement"
	"github.com/automoto/anticipation-mp/shared/netconfig"
	"github.com/go-gl/mathgl/mgl64"
	log "github.com/sirupsen/logrus"
)

// visualArriveDistance is how close the owner's visual must be to a node
// before the platform pauses there.
const visualArriveDistance = 1e-6

// PlatformMover drives a platform back and forth along its path. It publishes
// its transform every tick into a zero-delay follower, which is what the
// owner would render, and waits at each node for that visual to arrive.
type PlatformMover struct {
	nodes []mgl64.Vec3
	speed float64
	pause float64

	target    int
	direction int
	state     netconfig.PlatformState
	pauseLeft float64

	position mgl64.Vec3
	rotation mgl64.Quat
	movement mgl64.Vec3

	visual *network.TickOffsetFollower
}

func NewPlatformMover(path leveldata.PlatformPath, clock network.TickClock) *PlatformMover {
	p := &PlatformMover{
		speed:     path.Speed,
		pause:     path.Pause,
		direction: 1,
		rotation:  mgl64.QuatIdent(),
		visual:    network.NewTickOffsetFollower(clock, network.FollowerTicksAgo(true, 0)),
	}
	for _, n := range path.Nodes {
		p.nodes = append(p.nodes, mgl64.Vec3{n.X, 0, n.Z})
	}
	if len(p.nodes) > 0 {
		p.position = p.nodes[0]
	}
	return p
}

// Start sets the platform moving toward its second node. A path with fewer
// than two nodes never moves.
func (p *PlatformMover) Start() {
	if len(p.nodes) < 2 || p.speed <= 0 {
		p.state = netconfig.PlatformNone
		return
	}
	p.target = 1
	p.direction = 1
	p.state = netconfig.PlatformMoving
}

// Step advances the state machine and publishes the transform for tick.
func (p *PlatformMover) Step(dt float64, tick int) {
	p.movement = mgl64.Vec3{}

	switch p.state {
	case netconfig.PlatformMoving:
		node := p.nodes[p.target]
		toNode := node.Sub(p.position)
		dist := toNode.Len()
		stepLen := p.speed * dt
		if dist <= stepLen {
			p.movement = toNode
			p.position = node
			p.state = netconfig.PlatformWaitingVisual
		} else {
			p.movement = toNode.Mul(stepLen / dist)
			p.position = p.position.Add(p.movement)
		}
		if p.movement.Len() > 0 {
			p.rotation = movement.LookRotation(p.movement)
		}
	case netconfig.PlatformWaitingVisual:
		if p.visual.Position().Sub(p.nodes[p.target]).Len() <= visualArriveDistance {
			p.state = netconfig.PlatformPaused
			p.pauseLeft = p.pause
			log.Debugf("[platform] reached node %d", p.target)
		}
	case netconfig.PlatformPaused:
		p.pauseLeft -= dt
		if p.pauseLeft <= 0 {
			p.advanceTarget()
			p.state = netconfig.PlatformMoving
		}
	}

	p.visual.Push(p.Transform(), tick)
	p.visual.Update(dt)
}

// advanceTarget ping-pongs along the path.
func (p *PlatformMover) advanceTarget() {
	next := p.target + p.direction
	if next < 0 || next >= len(p.nodes) {
		p.direction = -p.direction
		next = p.target + p.direction
	}
	p.target = next
}

func (p *PlatformMover) State() netconfig.PlatformState {
	return p.state
}

func (p *PlatformMover) Target() int {
	return p.target
}

func (p *PlatformMover) Transform() network.TransformState {
	return network.TransformState{Position: p.position, Rotation: p.rotation}
}

// Movement is the displacement over the last step.
func (p *PlatformMover) Movement() mgl64.Vec3 {
	return p.movement
}

// Visual is the owner's zero-delay rendering of the platform.
func (p *PlatformMover) Visual() network.TransformState {
	return p.visual.Transform()
}
