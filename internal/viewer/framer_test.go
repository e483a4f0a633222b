package viewer

import (
	gomath "math"
	"testing"

	"github.com/openairframe/stlview/internal/engine/camera"
)

func TestFrameSphere_SphereInsideFrustum(t *testing.T) {
	fov := camera.DefaultFOV
	radii := []float32{0.1, 1, 10, 500}
	aspects := []float32{0.5, 1, 2}

	for _, r := range radii {
		for _, a := range aspects {
			f := FrameSphere(r, fov, a)

			halfV := float64(fov) / 2
			halfH := gomath.Atan(gomath.Tan(halfV) * float64(a))

			// The sphere fits an axis when distance*sin(halfAngle) >= r.
			if float64(f.Distance)*gomath.Sin(halfV) < float64(r)-1e-4 {
				t.Errorf("r=%f a=%f: sphere exceeds vertical fov at distance %f", r, a, f.Distance)
			}
			if float64(f.Distance)*gomath.Sin(halfH) < float64(r)-1e-4 {
				t.Errorf("r=%f a=%f: sphere exceeds horizontal fov at distance %f", r, a, f.Distance)
			}

			if f.Near > f.Distance-r {
				t.Errorf("r=%f a=%f: near plane %f clips the sphere", r, a, f.Near)
			}
			if f.Far < f.Distance+r {
				t.Errorf("r=%f a=%f: far plane %f clips the sphere", r, a, f.Far)
			}
		}
	}
}

func TestFrameSphere_MonotonicInRadius(t *testing.T) {
	fov := camera.DefaultFOV
	for _, a := range []float32{0.5, 1, 2} {
		prev := float32(0)
		for _, r := range []float32{0.01, 0.1, 1, 5, 50, 1000} {
			f := FrameSphere(r, fov, a)
			if f.Distance < prev {
				t.Errorf("aspect %f: distance decreased from %f to %f as radius grew to %f", a, prev, f.Distance, r)
			}
			prev = f.Distance
		}
	}
}

func TestFrameSphere_MonotonicInPadding(t *testing.T) {
	prev := float32(0)
	for _, p := range []float32{1.0, 1.35, 2.0, 5.0} {
		f := frameSphere(3, camera.DefaultFOV, 1.5, p)
		if f.Distance <= prev {
			t.Errorf("distance not increasing with padding %f", p)
		}
		prev = f.Distance
	}
}

func TestFrameSphere_DegenerateRadiusFloored(t *testing.T) {
	f := FrameSphere(0, camera.DefaultFOV, 1)
	if f.Distance <= 0 || gomath.IsNaN(float64(f.Distance)) || gomath.IsInf(float64(f.Distance), 0) {
		t.Errorf("degenerate radius produced distance %f", f.Distance)
	}
	if f.Near < 0.01 {
		t.Errorf("near plane %f below minimum", f.Near)
	}
}

func TestFrameSphere_NearFarRules(t *testing.T) {
	f := FrameSphere(100, camera.DefaultFOV, 1)
	if gomath.Abs(float64(f.Near-0.1)) > 1e-5 {
		t.Errorf("near = %f, want r/1000 = 0.1", f.Near)
	}
	if gomath.Abs(float64(f.Far-(f.Distance+1000))) > 1e-2 {
		t.Errorf("far = %f, want distance+10r = %f", f.Far, f.Distance+1000)
	}
}

func TestApplyFraming_RefreshesCamera(t *testing.T) {
	cam := camera.New()
	f := FrameSphere(10, cam.FOV, cam.Aspect)
	ApplyFraming(cam, f)

	if cam.Near != f.Near || cam.Far != f.Far {
		t.Errorf("camera planes %f/%f, want %f/%f", cam.Near, cam.Far, f.Near, f.Far)
	}

	pos := cam.Position()
	want := DefaultViewDirection.Mul(f.Distance)
	for i := 0; i < 3; i++ {
		if gomath.Abs(float64(pos[i]-want[i])) > 1e-2 {
			t.Errorf("position[%d] = %f, want %f", i, pos[i], want[i])
		}
	}

	// No easing drift after framing.
	cam.Update(0.1)
	pos2 := cam.Position()
	for i := 0; i < 3; i++ {
		if gomath.Abs(float64(pos2[i]-pos[i])) > 1e-4 {
			t.Fatalf("camera drifted after framing: %v vs %v", pos2, pos)
		}
	}
}
