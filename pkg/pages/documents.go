package pages

import (
	"context"
	"io"
	"mime"
	"os"
	"path/filepath"
	"sort"

	tea "github.com/charmbracelet/bubbletea/v2"

	"rmoflow/pkg/app"
	"rmoflow/pkg/cache"
	"rmoflow/pkg/events"
)

// Documents lists the uploaded files and runs uploads as cancelable
// background tasks with visible progress.
type Documents struct {
	Actions  Actions
	Cache    *cache.Cache
	Renderer Renderer
	Prompt   Prompter
	// Emit receives upload progress and completion messages.
	Emit func(tea.Msg)
	// Open resolves an upload source; defaults to the local filesystem.
	Open func(path string) (io.ReadCloser, int64, error)

	tasks map[string]*UploadStatus
	live  map[string]*app.UploadTask
}

func (p *Documents) Mount(_ string, bind *events.Binder) error {
	if p.tasks == nil {
		p.tasks = make(map[string]*UploadStatus)
		p.live = make(map[string]*app.UploadTask)
	}
	if p.Open == nil {
		p.Open = openFile
	}

	bind.On("upload", func(ev events.UIEvent) { p.upload(ev.Value) })
	bind.On("cancel-upload", func(ev events.UIEvent) { p.cancelUpload(ev.Target) })
	bind.On("delete", func(ev events.UIEvent) { p.delete(ev.Target) })

	p.Refresh()
	return nil
}

func (p *Documents) Refresh() {
	uploads := make([]UploadStatus, 0, len(p.tasks))
	for _, u := range p.tasks {
		uploads = append(uploads, *u)
	}
	sort.Slice(uploads, func(i, j int) bool { return uploads[i].TaskID < uploads[j].TaskID })
	p.Renderer.RenderDocuments(DocumentsVM{
		Documents: p.Cache.Documents(),
		Uploads:   uploads,
	})
}

// HandleUploadMsg folds progress and completion messages into the page's
// task list. Completions for unknown (already canceled and cleared) tasks
// are ignored.
func (p *Documents) HandleUploadMsg(msg tea.Msg) {
	switch m := msg.(type) {
	case events.UploadProgressMsg:
		if u, ok := p.tasks[m.TaskID]; ok {
			u.Pct = m.Pct
			p.Refresh()
		}
	case events.UploadDoneMsg:
		if _, ok := p.tasks[m.TaskID]; !ok {
			return
		}
		delete(p.tasks, m.TaskID)
		delete(p.live, m.TaskID)
		p.Refresh()
	}
}

func (p *Documents) upload(path string) {
	r, size, err := p.Open(path)
	if err != nil {
		return
	}
	name := filepath.Base(path)
	mimeType := mime.TypeByExtension(filepath.Ext(name))

	emit := p.Emit
	if emit == nil {
		emit = func(tea.Msg) {}
	}
	task, err := p.Actions.UploadDocument(context.Background(), name, mimeType, r, size, func(msg tea.Msg) {
		if _, done := msg.(events.UploadDoneMsg); done {
			r.Close()
		}
		emit(msg)
	})
	if err != nil {
		r.Close()
		return
	}
	p.tasks[task.ID] = &UploadStatus{TaskID: task.ID, Name: name}
	p.live[task.ID] = task
	p.Refresh()
}

func (p *Documents) cancelUpload(taskID string) {
	if task, ok := p.live[taskID]; ok {
		task.Cancel()
	}
}

func (p *Documents) delete(id string) {
	if p.Prompt != nil && !p.Prompt.Confirm("Delete this document? Applications referencing it keep a dead link.") {
		return
	}
	_ = p.Actions.DeleteDocument(context.Background(), id)
}

func openFile(path string) (io.ReadCloser, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	return f, info.Size(), nil
}
