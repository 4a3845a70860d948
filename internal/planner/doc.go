// Package planner turns discovered frames and user answers into concrete
// decisions: which frames need decoding and which are served from the
// intermediate cache, and which encoder settings a video format maps to.
//
//   - FramePlan, Action, EncodeSettings (types.go)
//   - BuildFramePlans, Settings (planner.go)
//   - EstimateSize: nominal output size shown before an encode (estimation.go)
package planner
