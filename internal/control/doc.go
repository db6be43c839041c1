// Package control provides burner controllers for the roast loop.
//
// Controllers implement the [sim.Controller] interface and turn a probe
// measurement, a setpoint and a tick length into a power output:
//
//   - [PID]: Proportional-Integral-Derivative tracking of the target curve
//   - [Schedule]: plays back a fixed power schedule, ignoring the setpoint
//   - [Fixed]: holds a constant power level
//
// # Usage
//
//	pid := control.NewPID(2.0, 0.05, 8.0) // Kp, Ki, Kd
//	s := sim.New(drum, pid, curve)
//	// Controller.Output is called once per tick
//
// PID gains are set at construction and never change; live retuning swaps
// in a fresh controller.
package control
