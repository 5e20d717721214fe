// Package events decouples artifact generation from its side effects.
//
// The generation service emits an ArtifactEvent after a summary or exercise
// set has been persisted; handlers registered on the emitter react to it
// without the service knowing who they are. The primary components are:
// - ArtifactEvent: describes one persisted generation result
// - EventHandler: interface for components that react to events
// - EventEmitter: interface for components that publish events
// - UsageLogHandler: records a PromptUsageLog row for every event
package events
