// Package app composes the bridge services into a running application.
//
// The layout mirrors the dependency direction:
//
//	internal/app/
//	├── application.go      # Wiring and lifecycle
//	├── domain/             # Pure data models (transfer, claim, validator, ...)
//	├── storage/            # Store interfaces, memory and postgres backends
//	├── ledger/             # Asset-transfer primitive
//	├── heights/            # Logical block-height clock
//	├── services/           # Business logic (bridge core, validator registry)
//	├── httpapi/            # REST surface
//	├── system/             # Lifecycle-managed background services
//	└── metrics/            # Prometheus instrumentation
//
// Domain models carry no business logic; the bridge service owns every
// state mutation and runs each operation under one critical section.
package app
