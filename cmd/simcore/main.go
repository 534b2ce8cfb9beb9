// Command simcore is the pure-Go bench entrypoint: it wires joint.Joint
// to targets/sim's simulated motor plant and in-memory CAN loopback,
// drives the FOC tick and dispatcher poll (10kHz) and the cooperative
// motion/adaptive tick (1kHz) in real wall-clock time, and plays a short scripted iRPC
// session over the loopback CAN link the way a bench host would — the
// pure-Go analogue of targets/rp2040/main.go's embedded main loop, used
// for local development and CI smoke-testing without any hardware.
package main

import (
	"fmt"
	"os"
	"time"

	"motorcore/core"
	"motorcore/irpc"
	"motorcore/joint"
	"motorcore/motion"
	"motorcore/targets/sim"
)

const (
	focDt    = float32(1.0 / 10000)
	motionDt = float32(1.0 / 1000)

	focPeriod    = time.Second / 10000
	motionPeriod = time.Millisecond
)

func main() {
	cfg := joint.Config{
		PolePairs:          7,
		CurrentLimitA:      5,
		VelocityLimit:      5,
		PositionLimit:      10,
		CurrentKp:          10,
		CurrentKi:          200,
		VelocityKp:         0.5,
		VelocityKi:         5,
		PositionKp:         20,
		TorqueConstant:     0.15,
		DeadlineMissBudget: 5,
		DeadlineMissWindow: 100,
		SelfID:             1,
		HostID:             2,
	}
	j := joint.New(cfg)

	plant := sim.NewPlant(sim.PlantConfig{
		PolePairs:        cfg.PolePairs,
		PhaseR:           0.3,
		PhaseL:           0.0005,
		Kt:               cfg.TorqueConstant,
		InertiaKgM2:      2e-5,
		Damping:          1e-4,
		Coulomb:          1e-3,
		SenseVoltsPerAmp: 0.2,
		AdcRefVolts:      3.3,
		AdcMaxCount:      4095,
		OffsetA:          2048,
		OffsetB:          2048,
		VbusNominal:      24,
	})
	jointCAN, hostCAN := sim.NewCANLink(8)
	sim.Attach(plant, jointCAN)

	bench := &benchHost{can: hostCAN, selfID: cfg.HostID, targetID: cfg.SelfID}
	bench.run()

	var ticks uint32
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		func() {
			defer func() {
				if r := recover(); r != nil {
					fmt.Fprintln(os.Stderr, "simcore: recovered panic:", r)
				}
			}()
			ticks++
			core.SetTime(core.TimerFromUS(ticks * 100))
			j.FocTick(focDt)
			plant.Step(focDt)

			if ticks%10 == 0 {
				j.MotionTick(motionDt)
			}
			j.Dispatcher().Poll(cfg.HostID)
			bench.drain()
		}()
		time.Sleep(focPeriod)
	}

	fmt.Printf("simcore: final position=%.4frad velocity=%.4frad/s\n", plant.MechanicalAngle(), plant.Velocity())
}

// benchHost plays a short scripted command sequence over the loopback
// CAN link and logs every response/telemetry frame it receives,
// standing in for the host-side tooling spec.md §1 scopes out of the
// core (interfaces only).
type benchHost struct {
	can      core.CANDriver
	selfID   uint16
	targetID uint16
	nextMsg  uint32
	scratch  [irpc.MaxFrameLen]byte
}

func (b *benchHost) run() {
	b.send(irpc.TagConfigure, irpc.ConfigurePayload{
		PolePairs: 7, CurrentLimitA: 5, VelocityLimit: 5, PositionLimit: 10,
		CurrentKp: 10, CurrentKi: 200, VelocityKp: 0.5, VelocityKi: 5, PositionKp: 20,
		TorqueConstant: 0.15, DefaultProfile: uint8(motion.SCurve),
	})
	b.send(irpc.TagActivate, noBody{})
	b.send(irpc.TagSetTargetV2, irpc.SetTargetV2Payload{
		Pos: 0.785398, VMax: 2, AMax: 20, JMax: 100, Profile: uint8(motion.SCurve),
	})
}

// drain logs every frame currently queued on the host side of the CAN
// link without blocking, called once per FOC tick alongside the
// dispatcher's own Poll.
func (b *benchHost) drain() {
	for {
		frame, ok := b.can.Recv()
		if !ok {
			return
		}
		f, ok := irpc.DecodeFrame(frame.Payload)
		if !ok {
			continue
		}
		switch f.Header.Tag {
		case irpc.TagAck:
			fmt.Printf("simcore: ack msg=%d\n", irpc.DecodeAck(&f).MsgID)
		case irpc.TagNack:
			n := irpc.DecodeNack(&f)
			fmt.Printf("simcore: nack msg=%d code=%s\n", n.MsgID, n.ErrorCode)
		case irpc.TagTelemetryStream:
			t := irpc.DecodeTelemetryStream(&f)
			fmt.Printf("simcore: telemetry pos=%.4f vel=%.4f iq=%.3f loop_us=%d\n", t.Pos, t.Vel, t.Iq, t.FocLoopUs)
		}
	}
}

type noBody struct{}

func (noBody) Encode(f *irpc.Frame) { f.BodyLen = 0 }

func (b *benchHost) send(tag irpc.Tag, p interface{ Encode(*irpc.Frame) }) {
	b.nextMsg++
	var f irpc.Frame
	f.Header = irpc.Header{SourceID: b.selfID, TargetID: b.targetID, MsgID: b.nextMsg, Tag: tag}
	p.Encode(&f)
	wire := f.Encode(b.scratch[:])
	_ = b.can.Send(core.CANFrame{ID: uint32(b.selfID), Payload: append([]byte(nil), wire...)})
}
