package rules

import (
	"strconv"

	"AllocDesk/internal/domain/models"
	"AllocDesk/internal/services/series"
)

// EvaluateDrawdown computes the advisory staging signal for the reference
// equity series: drawdown from the running all-time high mapped onto the
// staging ladder, plus the trend label against the 50-day MA.
func EvaluateDrawdown(cfg DrawdownConfig, ref models.PriceSeries) models.DrawdownStatus {
	current, okCur := series.Last(ref)
	ath, okATH := series.RunningMax(ref)
	if !okCur || !okATH || ath <= 0 {
		return models.DrawdownStatus{}
	}

	mdd := (current/ath - 1) * 100
	label, conversion := stageFor(cfg, mdd)

	st := models.DrawdownStatus{
		Available:     true,
		Current:       current,
		AllTimeHigh:   ath,
		DrawdownPct:   mdd,
		StageLabel:    label,
		ConversionPct: conversion,
	}
	if ma, ok := series.SMA(ref, cfg.MAWindow); ok {
		st.MA50 = ma
		st.MA50Defined = true
		st.TrendLabel = TrendLabel(current, ath, ma, cfg.ProfitMaxRatio)
	}
	return st
}

// stageFor maps a drawdown percentage onto the staging ladder. Bounds are
// upper-inclusive: mdd exactly on a threshold belongs to the deeper stage.
func stageFor(cfg DrawdownConfig, mdd float64) (string, int) {
	if len(cfg.Thresholds) == 0 || mdd > cfg.Thresholds[0] {
		return models.StageNoise, 0
	}
	for k := 1; k < len(cfg.Thresholds); k++ {
		if mdd > cfg.Thresholds[k] {
			return stageLabel(k, len(cfg.Thresholds)), cfg.Conversions[k-1]
		}
	}
	return models.StageFinal, cfg.Conversions[len(cfg.Conversions)-1]
}

func stageLabel(k, n int) string {
	if k >= n {
		return models.StageFinal
	}
	return "stage " + strconv.Itoa(k)
}

// TrendLabel classifies the current price against the trend MA and the
// all-time high: below the MA the trend is broken; within profitMaxRatio of
// the high the position is in the profit-max zone; otherwise the trend is
// intact. Evaluated in that order.
func TrendLabel(current, ath, ma, profitMaxRatio float64) string {
	switch {
	case current < ma:
		return models.TrendBroken
	case current >= ath*profitMaxRatio:
		return models.TrendProfitMax
	default:
		return models.TrendIntact
	}
}
