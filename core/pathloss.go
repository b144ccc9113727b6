package core

import (
	"math"

	"github.com/signalsfoundry/coverage-mapper/model"
)

// minDistanceM clamps path distances so the logarithmic terms stay finite
// for samples coincident with a transmitter.
const minDistanceM = 0.1

// fsplConstant is the free-space path-loss constant for distance in metres
// and frequency in Hz: 20·log10(4π/c).
const fsplConstant = -147.55

// FSPL returns the free-space path loss in dB for a path of distM metres at
// freqHz Hz. Distances below the minimum clamp are treated as the minimum.
func FSPL(distM, freqHz float64) float64 {
	if distM < minDistanceM {
		distM = minDistanceM
	}
	return 20*math.Log10(distM) + 20*math.Log10(freqHz) + fsplConstant
}

// PathLossModel computes indoor path loss between a transmitter and sample
// points, counting every wall the straight-line path actually crosses.
type PathLossModel struct {
	Walls []WallSegment
	Cfg   model.Config
}

// PathLoss returns the total path loss in dB from tx to p and the number of
// walls the path crossed. The loss is the free-space term, a distance-scaled
// indoor factor, a per-floor penalty for vertical separation, and the summed
// material attenuation of every intersected wall.
func (m *PathLossModel) PathLoss(tx model.Transmitter, p model.Position) (float64, int) {
	dist := tx.Position.DistanceTo(p)
	if dist < minDistanceM {
		dist = minDistanceM
	}

	loss := FSPL(dist, tx.Band.CenterFrequencyHz())

	// Indoor environments attenuate faster than free space; scale the
	// extra exponent with log-distance so the free-space term stays the
	// d=1m anchor.
	loss += 10 * math.Log10(dist) * (m.Cfg.IndoorExponent - m.Cfg.FreeSpaceExponent)

	// Vertical separation crossing floor slabs.
	floorHeight := m.Cfg.FloorHeightM
	if floorHeight <= 0 {
		floorHeight = 3
	}
	floors := int(math.Abs(tx.Position.Z-p.Z) / floorHeight)
	loss += float64(floors) * m.Cfg.FloorAttenuationDB

	walls := 0
	for _, w := range m.Walls {
		if RayIntersectsWall(tx.Position, p, w) {
			loss += w.AttenuationDB
			walls++
		}
	}

	return loss, walls
}

// SignalStrength returns the received signal strength in dBm at p from tx:
// transmit power plus antenna gain minus total path loss.
func (m *PathLossModel) SignalStrength(tx model.Transmitter, p model.Position) (signalDBm, pathLossDB float64) {
	loss, _ := m.PathLoss(tx, p)
	return tx.EffectivePowerDBm() + tx.EffectiveGainDBi() - loss, loss
}

// BestSignal evaluates every transmitter at p and returns the strongest
// received signal, its path loss, and the index of the winning transmitter
// in txs. With no transmitters it returns (-inf, 0, -1).
func (m *PathLossModel) BestSignal(txs []model.Transmitter, p model.Position) (signalDBm, pathLossDB float64, txIndex int) {
	best := math.Inf(-1)
	bestLoss := 0.0
	bestIdx := -1
	for i, tx := range txs {
		sig, loss := m.SignalStrength(tx, p)
		if sig > best {
			best = sig
			bestLoss = loss
			bestIdx = i
		}
	}
	return best, bestLoss, bestIdx
}
