package sales

import "sync"

// workspaceLocks serializa los escritores de un mismo workspace (un único escritor lógico).
// Workspaces distintos no se bloquean entre sí.
type workspaceLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newWorkspaceLocks() *workspaceLocks {
	return &workspaceLocks{locks: make(map[string]*sync.Mutex)}
}

// lock bloquea el workspace y retorna la función para liberarlo.
func (w *workspaceLocks) lock(workspaceID string) func() {
	w.mu.Lock()
	l, ok := w.locks[workspaceID]
	if !ok {
		l = &sync.Mutex{}
		w.locks[workspaceID] = l
	}
	w.mu.Unlock()
	l.Lock()
	return l.Unlock
}
