package uninstall

import (
	"encoding/json"
	"path"

	"github.com/pkg/errors"

	"github.com/mesosphere/uninstall-scheduler/internal/store"
)

// Persisted layout (spec §6): everything lives under the configured service
// namespace, with FrameworkId at a single well-known path beneath it and one
// {info,status} pair per task beneath Tasks/<name>/.
const (
	frameworkIDEntry = "FrameworkId"
	tasksEntry       = "Tasks"
	infoEntry        = "info"
	statusEntry      = "status"
)

func frameworkIDPath(namespace string) string {
	return path.Join(namespace, frameworkIDEntry)
}

func tasksPath(namespace string) string {
	return path.Join(namespace, tasksEntry)
}

func taskInfoPath(namespace, name string) string {
	return path.Join(namespace, tasksEntry, name, infoEntry)
}

func taskStatusPath(namespace, name string) string {
	return path.Join(namespace, tasksEntry, name, statusEntry)
}

// persistedTaskInfo is the on-disk shape of the parts of TaskRecord stored at
// Tasks/<name>/info. Resources is rewritten by SaveTaskResources when the
// recorder tombstones a reservation.
type persistedTaskInfo struct {
	TaskID            string     `json:"taskId"`
	Resources         []Resource `json:"resources"`
	PermanentlyFailed bool       `json:"permanentlyFailed"`
}

// LoadFrameworkID returns the persisted framework ID and whether one exists.
func LoadFrameworkID(s store.Store, namespace string) (string, bool, error) {
	v, err := s.Get(frameworkIDPath(namespace))
	if err == store.ErrNotFound {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrap(err, "load framework id")
	}
	return string(v), true, nil
}

// SaveFrameworkID persists the framework ID the master assigned at
// registration.
func SaveFrameworkID(s store.Store, namespace, frameworkID string) error {
	return s.Set(frameworkIDPath(namespace), []byte(frameworkID))
}

// LoadTasks reads every persisted task record under the service namespace.
func LoadTasks(s store.Store, namespace string) ([]TaskRecord, error) {
	names, err := s.GetChildren(tasksPath(namespace))
	if err != nil {
		return nil, errors.Wrap(err, "list persisted tasks")
	}

	tasks := make([]TaskRecord, 0, len(names))
	for _, name := range names {
		infoBytes, err := s.Get(taskInfoPath(namespace, name))
		if err != nil {
			return nil, errors.Wrapf(err, "load task info for %q", name)
		}
		var info persistedTaskInfo
		if err := json.Unmarshal(infoBytes, &info); err != nil {
			return nil, errors.Wrapf(err, "decode task info for %q", name)
		}

		status := TaskStatusUnknown
		if statusBytes, err := s.Get(taskStatusPath(namespace, name)); err == nil {
			status = TaskStatusValue(decodeTaskStatus(statusBytes))
		} else if err != store.ErrNotFound {
			return nil, errors.Wrapf(err, "load task status for %q", name)
		}

		tasks = append(tasks, TaskRecord{
			Name:              name,
			TaskID:            info.TaskID,
			Resources:         info.Resources,
			PermanentlyFailed: info.PermanentlyFailed,
			LastStatus:        status,
		})
	}
	return tasks, nil
}

func decodeTaskStatus(b []byte) int {
	var v int
	_ = json.Unmarshal(b, &v)
	return v
}

// SaveTaskResources rewrites a task's persisted resource list, used by the
// recorder to durably tombstone a released reservation (spec §4.F: "the
// mutation is the canonical durable signal of progress"). The read of the
// current record and the write of the rewritten one happen inside a single
// Store.ReadModifyWrite call (spec §5's compound-atomicity requirement), so
// a concurrent status update touching the same task can never interleave
// with the tombstone rewrite.
func SaveTaskResources(s store.Store, namespace, name string, resources []Resource) error {
	infoPath := taskInfoPath(namespace, name)
	return s.ReadModifyWrite(
		[]string{infoPath},
		func(current map[string][]byte) (map[string][]byte, error) {
			infoBytes, ok := current[infoPath]
			if !ok {
				return nil, errors.Errorf("load task info for %q before tombstoning: not found", name)
			}
			var info persistedTaskInfo
			if err := json.Unmarshal(infoBytes, &info); err != nil {
				return nil, errors.Wrapf(err, "decode task info for %q before tombstoning", name)
			}
			info.Resources = resources
			encoded, err := json.Marshal(info)
			if err != nil {
				return nil, errors.Wrapf(err, "encode task info for %q", name)
			}
			return map[string][]byte{infoPath: encoded}, nil
		},
	)
}

// SaveTaskStatus persists the last status reported for a task, keyed by the
// task name resolved from the task ID (spec §4.G step 4).
func SaveTaskStatus(s store.Store, namespace, name string, status TaskStatusValue) error {
	encoded, err := json.Marshal(int(status))
	if err != nil {
		return err
	}
	return s.Set(taskStatusPath(namespace, name), encoded)
}

// ClearAll wipes every persisted entry for the service, including the
// framework ID, as the final act of the deregister step.
func ClearAll(s store.Store, namespace string) error {
	return s.DeleteAll(namespace)
}
