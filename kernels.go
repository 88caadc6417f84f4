package helios

// feedForward computes the outputs of every neuron in the share.
func feedForward(s *slice) {
	for n := s.Start; n < s.End; n++ {
		w := row(s.weights, s.mw, n)
		var sum float64
		for i, x := range s.in[:s.fanIn] {
			sum += w[i] * x
		}
		if s.bias {
			sum += w[s.fanIn]
		}
		s.out[n] = s.act.Activate(s.ifactor * sum)
	}
}

// outputBackprop computes the output layer's derivatives against the target
// and adjusts its weights.
func outputBackprop(s *slice) {
	for n := s.Start; n < s.End; n++ {
		o := s.out[n]
		s.derrW[n] = (s.target[n] - o) * s.act.Prime(o)
		adjust(s, n)
	}
}

// hiddenBackprop computes a hidden layer's derivatives from the derivatives
// and pre-update weights the layer above left in the read slots, then
// adjusts its weights.
func hiddenBackprop(s *slice) {
	for n := s.Start; n < s.End; n++ {
		s.derrW[n] = 0
	}
	for n := s.Start; n < s.End; n++ {
		for next := 0; next < s.nextWidth; next++ {
			s.derrW[n] += s.derrR[next] * row(s.oldwR, s.mw, next)[n]
		}
	}
	for n := s.Start; n < s.End; n++ {
		s.derrW[n] *= s.act.Prime(s.out[n])
		adjust(s, n)
	}
}

// adjust snapshots neuron n's weights into the write slot, then moves them
// along its derivative.
func adjust(s *slice, n int) {
	w := row(s.weights, s.mw, n)
	old := row(s.oldwW, s.mw, n)
	d := s.alpha * s.derrW[n]
	for i, x := range s.in[:s.fanIn] {
		old[i] = w[i]
		w[i] += d * x
	}
	if s.bias {
		old[s.fanIn] = w[s.fanIn]
		w[s.fanIn] += d
	}
}
