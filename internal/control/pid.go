package control

// PID tracks a setpoint with a textbook three-term loop. There is no
// anti-windup and no output clamping here; the simulation loop clamps
// power to the burner range.
type PID struct {
	Kp float64
	Ki float64
	Kd float64

	integral float64
	prevErr  float64
}

func NewPID(kp, ki, kd float64) *PID {
	return &PID{Kp: kp, Ki: ki, Kd: kd}
}

// Output computes the control value for one tick. The integral
// accumulates before the derivative is taken, and prevErr is overwritten
// last; a zero-length tick contributes no derivative term.
func (p *PID) Output(measurement, setpoint, dt float64) float64 {
	err := setpoint - measurement

	p.integral += err * dt

	derivative := 0.0
	if dt > 0 {
		derivative = (err - p.prevErr) / dt
	}

	out := p.Kp*err + p.Ki*p.integral + p.Kd*derivative

	p.prevErr = err

	return out
}
