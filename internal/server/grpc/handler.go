package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophsite/internal/adminrpc"
	"github.com/dmitrijs2005/gophsite/internal/common"
	"github.com/dmitrijs2005/gophsite/internal/editor"
	"github.com/dmitrijs2005/gophsite/internal/models"
)

const defaultActivityLimit = 50

func (s *GRPCServer) Ping(_ context.Context, _ *adminrpc.Empty) (*adminrpc.PingResponse, error) {
	connected := s.Feed == nil || s.Feed.Connected()
	st := "ok"
	if !connected {
		st = "degraded"
	}
	return &adminrpc.PingResponse{Status: st, FeedConnected: connected}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *adminrpc.LoginRequest) (*adminrpc.LoginResponse, error) {
	token, err := s.Auth.Login(ctx, req.Username, req.Password)
	if err != nil {
		s.logger.Warn(ctx, "staff login failed", "username", req.Username)
		return nil, s.toStatus(ctx, err)
	}
	s.logger.Info(ctx, "staff logged in", "username", req.Username)
	return &adminrpc.LoginResponse{Token: token}, nil
}

func (s *GRPCServer) Logout(ctx context.Context, _ *adminrpc.Empty) (*adminrpc.LogoutResponse, error) {
	return &adminrpc.LogoutResponse{Closed: s.Sessions.Close(staffUser(ctx))}, nil
}

func (s *GRPCServer) Collection(ctx context.Context, req *adminrpc.CollectionRequest) (*adminrpc.CollectionResponse, error) {
	e, err := s.Registry.Get(req.Collection)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	v := e.Controller.View()
	resp := &adminrpc.CollectionResponse{
		Collection: v.Collection,
		Status:     string(v.Status),
		Orderable:  e.Kind.Orderable(),
		Upload:     e.Kind.UploadFolder != "",
		Records:    make([]models.Record, len(v.Records)),
	}
	if v.Err != nil {
		resp.Error = v.Err.Error()
	}
	for i, it := range v.Records {
		resp.Records[i] = it.Record
	}
	return resp, nil
}

func (s *GRPCServer) Activity(ctx context.Context, req *adminrpc.ActivityRequest) (*adminrpc.ActivityResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	entries, err := s.Deps.Activity.Recent(ctx, limit)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &adminrpc.ActivityResponse{Activity: entries}, nil
}

func (s *GRPCServer) editor(ctx context.Context, collection string) (*editor.Editor, error) {
	ed, err := s.Sessions.Editor(staffUser(ctx), collection)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return ed, nil
}

func sessionResponse(ed *editor.Editor) *adminrpc.SessionResponse {
	sess := ed.Session()
	resp := &adminrpc.SessionResponse{
		Mode:        string(sess.Mode),
		TargetID:    sess.TargetID,
		Draft:       sess.Draft,
		FieldErrors: sess.FieldErrors,
		Status:      string(sess.Status),
	}
	if sess.Err != nil {
		resp.Error = sess.Err.Error()
	}
	return resp
}

func (s *GRPCServer) Session(ctx context.Context, req *adminrpc.SessionRequest) (*adminrpc.SessionResponse, error) {
	ed, err := s.editor(ctx, req.Collection)
	if err != nil {
		return nil, err
	}
	return sessionResponse(ed), nil
}

func (s *GRPCServer) BeginCreate(ctx context.Context, req *adminrpc.BeginCreateRequest) (*adminrpc.SessionResponse, error) {
	ed, err := s.editor(ctx, req.Collection)
	if err != nil {
		return nil, err
	}
	if err := ed.BeginCreate(ctx, req.Defaults); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return sessionResponse(ed), nil
}

func (s *GRPCServer) BeginEdit(ctx context.Context, req *adminrpc.BeginEditRequest) (*adminrpc.SessionResponse, error) {
	e, err := s.Registry.Get(req.Collection)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	ed, err := s.editor(ctx, req.Collection)
	if err != nil {
		return nil, err
	}

	item, found := e.Controller.View().Find(req.ID)
	if !found {
		return nil, s.toStatus(ctx, common.ErrorNotFound)
	}
	if err := ed.BeginEdit(ctx, item.Record); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return sessionResponse(ed), nil
}

func (s *GRPCServer) SetFields(ctx context.Context, req *adminrpc.SetFieldsRequest) (*adminrpc.SessionResponse, error) {
	ed, err := s.editor(ctx, req.Collection)
	if err != nil {
		return nil, err
	}
	for name, value := range req.Fields {
		if err := ed.UpdateField(name, value); err != nil {
			return nil, s.toStatus(ctx, err)
		}
	}
	return sessionResponse(ed), nil
}

func (s *GRPCServer) Submit(ctx context.Context, req *adminrpc.SessionRequest) (*adminrpc.SubmitResponse, error) {
	ed, err := s.editor(ctx, req.Collection)
	if err != nil {
		return nil, err
	}
	id, err := ed.Submit(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &adminrpc.SubmitResponse{ID: id}, nil
}

func (s *GRPCServer) Cancel(ctx context.Context, req *adminrpc.SessionRequest) (*adminrpc.SessionResponse, error) {
	ed, err := s.editor(ctx, req.Collection)
	if err != nil {
		return nil, err
	}
	if err := ed.Cancel(ctx); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return sessionResponse(ed), nil
}

func (s *GRPCServer) Detach(ctx context.Context, req *adminrpc.SessionRequest) (*adminrpc.SessionResponse, error) {
	ed, err := s.editor(ctx, req.Collection)
	if err != nil {
		return nil, err
	}
	if err := ed.Detach(ctx); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return sessionResponse(ed), nil
}

// Upload stores the file and writes its URL into the draft's image field.
func (s *GRPCServer) Upload(ctx context.Context, req *adminrpc.UploadRequest) (*adminrpc.UploadResponse, error) {
	e, err := s.Registry.Get(req.Collection)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	if e.Kind.UploadFolder == "" {
		return nil, s.toStatus(ctx, &common.ValidationError{Fields: map[string]string{"file": "collection has no media"}})
	}
	ed, err := s.editor(ctx, req.Collection)
	if err != nil {
		return nil, err
	}
	if ed.Session().Mode == editor.ModeNone {
		return nil, s.toStatus(ctx, common.ErrNoSession)
	}
	if ed.Saving() {
		return nil, s.toStatus(ctx, common.ErrSaving)
	}

	task, err := s.Uploads.Upload(ctx, req.Data, req.Filename, e.Kind.UploadFolder)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	if err := ed.UpdateField(e.Kind.ImageField, task.URL); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &adminrpc.UploadResponse{
		Task: adminrpc.UploadTask{
			Size:        task.Size,
			Path:        task.Path,
			ContentType: task.ContentType,
			Status:      string(task.Status),
			URL:         task.URL,
		},
		Field: e.Kind.ImageField,
	}, nil
}

func (s *GRPCServer) Remove(ctx context.Context, req *adminrpc.RemoveRequest) (*adminrpc.RemoveResponse, error) {
	ed, err := s.editor(ctx, req.Collection)
	if err != nil {
		return nil, err
	}

	err = ed.Remove(ctx, req.ID, func(string) bool { return req.Confirm })
	switch {
	case errors.Is(err, common.ErrConfirmationDeclined):
		return &adminrpc.RemoveResponse{Declined: true}, nil
	case err != nil:
		return nil, s.toStatus(ctx, err)
	}
	return &adminrpc.RemoveResponse{Removed: true}, nil
}

func (s *GRPCServer) Reorder(ctx context.Context, req *adminrpc.ReorderRequest) (*adminrpc.Empty, error) {
	e, err := s.Registry.Get(req.Collection)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	if !e.Kind.Orderable() {
		return nil, s.toStatus(ctx, &common.ValidationError{Fields: map[string]string{"ids": "collection has no display order"}})
	}
	if err := s.Store.Reorder(ctx, e.Kind.Name, req.IDs); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	for i, id := range req.IDs {
		s.Deps.Activity.Record(models.ActionUpdate, e.Kind.Name, id, models.Fields{"display_order": i})
	}
	return &adminrpc.Empty{}, nil
}
