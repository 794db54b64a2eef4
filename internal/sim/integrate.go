package sim

// UpdatePositions advances every particle with Verlet integration, unit mass:
// next = 2*position - last + netForce*dt.
func (s *System) UpdatePositions(dt float64) {
	for i := range s.particles {
		p := &s.particles[i]
		next := p.Position.Mul(2).Sub(p.LastPosition).Add(p.NetForce.Mul(dt))
		p.LastPosition = p.Position
		p.Position = next
	}
}

// WrapPositions teleports particles that left the box to the opposite edge.
// LastPosition moves with them so the implicit velocity survives the crossing.
func (s *System) WrapPositions() {
	size := s.params.BoxSize
	for i := range s.particles {
		p := &s.particles[i]
		delta := p.Velocity()

		// Move to the edge rather than by 2S, velocity can be huge after a long pause
		moved := false
		for axis := 0; axis < 2; axis++ {
			if p.Position[axis] > size {
				p.Position[axis] = -size
				moved = true
			} else if p.Position[axis] < -size {
				p.Position[axis] = size
				moved = true
			}
		}

		if moved {
			p.LastPosition = p.Position.Sub(delta)
		}
	}
}

// ClampPositions snaps particles that left the box onto its edge and reverses their
// velocity, keeping the given fraction of it.
func (s *System) ClampPositions(dampening float64) {
	size := s.params.BoxSize
	for i := range s.particles {
		p := &s.particles[i]
		delta := p.Velocity()

		moved := false
		for axis := 0; axis < 2; axis++ {
			if p.Position[axis] > size {
				p.Position[axis] = size
				moved = true
			} else if p.Position[axis] < -size {
				p.Position[axis] = -size
				moved = true
			}
		}

		if moved {
			p.LastPosition = p.Position.Add(delta.Mul(dampening))
		}
	}
}
