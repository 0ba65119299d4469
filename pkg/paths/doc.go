/*
Package paths creates and relocates the directories that configuration
entries point at.

Path entries name one or more directories (joined by the entry separator)
that must exist before a role starts. Mvpath entries relocate an old data
directory to a new location across upgrades.

# Architecture

	┌────────────────────── PATH MANAGER ───────────────────────┐
	│                                                             │
	│  path entry  "/data/1:/data/2"   sep ":"                    │
	│        │                                                    │
	│        ▼                                                    │
	│  Split ──► /data/1 ──► exists? ─ yes ─► skip                │
	│        │                  │ no                              │
	│        │                  ▼                                 │
	│        │            MkdirAll, chmod 0775                    │
	│        │            Owner.Chown(runAs)  (when set)          │
	│        └─► /data/2 ──► ...                                  │
	│                                                             │
	│  mvpath entry  defaultValue=/old  value=/new                │
	│        │                                                    │
	│        ▼                                                    │
	│  /old exists and /new absent? ─ no ─► skip                  │
	│        │ yes                                                │
	│        ▼                                                    │
	│  Create(/new) ──► move entries of /old ──► remove /old      │
	│                   (copy + remove across devices)            │
	└─────────────────────────────────────────────────────────────┘

# Semantics

Create:
  - Splits the value on the separator when it is set and present
  - Skips directories that already exist
  - Applies mode 0775 and, when RunAs is given, user:group ownership

Move:
  - Acts only when the source exists and the destination does not
  - Creates the destination with Create semantics, then moves the
    source entries into it and removes the emptied source
  - Falls back to copy-and-remove across devices
  - A destination entry that already exists is a filesystem error

Neither operation is transactional. A crash midway can leave a partially
created set of directories; the existence checks make the next run
finish the job.

# Core Components

Manager:
  - Create and Move, logging each directory it touches
  - WithOwner swaps the ownership policy

Owner:
  - SystemOwner looks users and groups up in the OS account database
  - An empty group falls back to the user's primary group
  - Tests use a recording fake so they run without root

# Usage

	m := paths.NewManager(log.WithComponent("paths"))

	runAs := &types.RunAs{User: "hdfs", Group: "hadoop"}
	if err := m.Create("/data/1:/data/2", ":", runAs); err != nil {
		return err
	}

	moved, err := m.Move("/opt/old-data", "/data/zk", "", runAs)

# Troubleshooting

Directory has the wrong owner:
  - Ownership is only applied to directories the manager creates; an
    existing directory is left as it is
  - Check that the RunAs user exists on the node (user.Lookup errors
    fail the run)

Move did nothing:
  - The destination already exists, or the source is missing; both are
    treated as "already relocated"

# See Also

  - pkg/configure for the entries that drive these operations
*/
package paths
