// Package motion builds per-car motion profiles: a phased speed and distance
// timeline on the fixed tick grid, synthesized from kinematic parameters that
// are drawn by rejection sampling from per-car Gaussians.
//
// A profile always runs CRUISE → DECEL → STOP → ACCEL → CRUISE_A → PAST_SIM.
// Distances are emitted in pixels, speeds in metres per second, and every
// numeric field is rounded to four decimals.
package motion
