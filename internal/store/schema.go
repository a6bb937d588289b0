package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

var (
	// SnapshotsColumns holds the columns of the app_snapshots table.
	SnapshotsColumns = []*schema.Column{
		{Name: "name", Type: field.TypeString, Size: 64},
		{Name: "data", Type: field.TypeString, Size: 1 << 20},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// SnapshotsTable holds one JSON document per key, replaced on save.
	SnapshotsTable = &schema.Table{
		Name:       "app_snapshots",
		Columns:    SnapshotsColumns,
		PrimaryKey: []*schema.Column{SnapshotsColumns[0]},
	}

	// StudyEventsColumns holds the columns of the study_events table.
	StudyEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "mode", Type: field.TypeString},
		{Name: "action", Type: field.TypeString},
		{Name: "page", Type: field.TypeInt, Default: 0},
		{Name: "known", Type: field.TypeInt, Default: 0},
		{Name: "unknown", Type: field.TypeInt, Default: 0},
		{Name: "mistakes", Type: field.TypeString, Size: 1 << 16, Default: "[]"},
	}
	// StudyEventsTable is the append-only log of submits and completions.
	StudyEventsTable = &schema.Table{
		Name:       "study_events",
		Columns:    StudyEventsColumns,
		PrimaryKey: []*schema.Column{StudyEventsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "studyevent_timestamp",
				Unique:  false,
				Columns: []*schema.Column{StudyEventsColumns[1]},
			},
		},
	}

	// Tables holds every table managed by the store.
	Tables = []*schema.Table{
		SnapshotsTable,
		StudyEventsTable,
	}
)
