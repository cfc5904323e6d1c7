/*
Package ports defines the driven ports (interfaces) of the agora debate engine.

These interfaces decouple orchestration from external implementations, allowing
the engine to talk to different model providers and to persist transcripts to
different backends.

# Key Interfaces

  - ChatCompleter: sends a role-tagged prompt to a chat-completion model.
  - TranscriptStore: appends one record per finished debate.
  - TranscriptReader / TranscriptRewriter: used by the editor to load and rewrite records.
  - DistributedLocker: coordinates rewrites of shared stores across processes.
*/
package ports
