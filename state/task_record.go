package state

import (
	"github.com/apache/thrift/lib/go/thrift"

	"github.com/twitter/harbor/offer"
	"github.com/twitter/harbor/state/gen-go/recordthrift"
)

// TaskRecord is the persisted record of a launched task: identity, where it
// runs, its last known state, and the reservations backing it. The union of
// a run's task-record resources is its expected-reservation inventory.
type TaskRecord struct {
	Name      string
	TaskID    string
	AgentID   offer.AgentID
	State     string
	Resources []offer.Resource
}

// Task records are stored thrift-binary encoded; the thrift structs are the
// storage schema and stay decoupled from the in-memory types. A resource's
// ServiceName is not part of the schema: deserialized resources carry it empty.
func SerializeTaskRecord(record *TaskRecord) ([]byte, error) {
	internal := recordthrift.NewTaskRecord()
	internal.Name = record.Name
	internal.TaskId = record.TaskID
	internal.AgentId = string(record.AgentID)
	internal.State = record.State
	internal.Resources = make([]*recordthrift.ResourceRecord, 0, len(record.Resources))
	for _, r := range record.Resources {
		internal.Resources = append(internal.Resources, &recordthrift.ResourceRecord{
			Name:          r.Name,
			Value:         r.Value,
			Role:          r.Role,
			Principal:     r.Principal,
			ResourceId:    r.ResourceID,
			PersistenceId: r.PersistenceID,
			MountRoot:     r.MountRoot,
		})
	}

	serializer := thrift.NewTSerializer()
	return serializer.Write(internal)
}

func DeserializeTaskRecord(data []byte) (*TaskRecord, error) {
	internal := recordthrift.NewTaskRecord()
	deserializer := thrift.NewTDeserializer()
	if err := deserializer.Read(internal, data); err != nil {
		return nil, err
	}

	record := &TaskRecord{
		Name:    internal.Name,
		TaskID:  internal.TaskId,
		AgentID: offer.AgentID(internal.AgentId),
		State:   internal.State,
	}
	for _, r := range internal.Resources {
		record.Resources = append(record.Resources, offer.Resource{
			Name:          r.Name,
			Value:         r.Value,
			Role:          r.Role,
			Principal:     r.Principal,
			ResourceID:    r.ResourceId,
			PersistenceID: r.PersistenceId,
			MountRoot:     r.MountRoot,
		})
	}
	return record, nil
}
