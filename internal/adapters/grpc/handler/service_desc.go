package handler

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServicePrefix は各サービスの完全修飾名の接頭辞です。
const ServicePrefix = "crewclock.v1."

// method は google.protobuf.Struct を入出力とする単項 RPC の MethodDesc を構築します。
func method[S any](service, name string, call func(S, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodDesc {
	fullMethod := "/" + service + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			impl := srv.(S)
			if interceptor == nil {
				return call(impl, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(impl, ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// CrewServiceServer はクルー管理サービスのサーバー実装が満たすインターフェースです。
type CrewServiceServer interface {
	CreateCrewMember(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateCrewMember(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteCrewMember(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetCrewMember(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListCrewMembers(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Login(context.Context, *structpb.Struct) (*structpb.Struct, error)
	LoginWithPIN(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// TimeClockServiceServer は打刻サービスのサーバー実装が満たすインターフェースです。
type TimeClockServiceServer interface {
	ClockIn(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ClockOut(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SetCurrentJob(context.Context, *structpb.Struct) (*structpb.Struct, error)
	EditTimeEntry(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteTimeEntry(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetTimeEntry(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// TimesheetServiceServer は勤務表サービスのサーバー実装が満たすインターフェースです。
type TimesheetServiceServer interface {
	Aggregate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	TodayLog(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CrewHistory(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// InvitationServiceServer は招待サービスのサーバー実装が満たすインターフェースです。
type InvitationServiceServer interface {
	IssueInvitation(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ResolveInvitation(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RedeemInvitation(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RevokeInvitation(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListInvitations(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetInvitation(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// ActivityServiceServer はアクティビティ参照サービスのサーバー実装が満たすインターフェースです。
type ActivityServiceServer interface {
	ListRecentActivities(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

const (
	crewServiceName       = ServicePrefix + "CrewService"
	timeClockServiceName  = ServicePrefix + "TimeClockService"
	timesheetServiceName  = ServicePrefix + "TimesheetService"
	invitationServiceName = ServicePrefix + "InvitationService"
	activityServiceName   = ServicePrefix + "ActivityService"
)

// CrewServiceDesc は CrewService の ServiceDesc です。
var CrewServiceDesc = grpc.ServiceDesc{
	ServiceName: crewServiceName,
	HandlerType: (*CrewServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		method(crewServiceName, "CreateCrewMember", CrewServiceServer.CreateCrewMember),
		method(crewServiceName, "UpdateCrewMember", CrewServiceServer.UpdateCrewMember),
		method(crewServiceName, "DeleteCrewMember", CrewServiceServer.DeleteCrewMember),
		method(crewServiceName, "GetCrewMember", CrewServiceServer.GetCrewMember),
		method(crewServiceName, "ListCrewMembers", CrewServiceServer.ListCrewMembers),
		method(crewServiceName, "Login", CrewServiceServer.Login),
		method(crewServiceName, "LoginWithPIN", CrewServiceServer.LoginWithPIN),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "crewclock/v1/crew.proto",
}

// TimeClockServiceDesc は TimeClockService の ServiceDesc です。
var TimeClockServiceDesc = grpc.ServiceDesc{
	ServiceName: timeClockServiceName,
	HandlerType: (*TimeClockServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		method(timeClockServiceName, "ClockIn", TimeClockServiceServer.ClockIn),
		method(timeClockServiceName, "ClockOut", TimeClockServiceServer.ClockOut),
		method(timeClockServiceName, "SetCurrentJob", TimeClockServiceServer.SetCurrentJob),
		method(timeClockServiceName, "EditTimeEntry", TimeClockServiceServer.EditTimeEntry),
		method(timeClockServiceName, "DeleteTimeEntry", TimeClockServiceServer.DeleteTimeEntry),
		method(timeClockServiceName, "GetTimeEntry", TimeClockServiceServer.GetTimeEntry),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "crewclock/v1/timeclock.proto",
}

// TimesheetServiceDesc は TimesheetService の ServiceDesc です。
var TimesheetServiceDesc = grpc.ServiceDesc{
	ServiceName: timesheetServiceName,
	HandlerType: (*TimesheetServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		method(timesheetServiceName, "Aggregate", TimesheetServiceServer.Aggregate),
		method(timesheetServiceName, "TodayLog", TimesheetServiceServer.TodayLog),
		method(timesheetServiceName, "CrewHistory", TimesheetServiceServer.CrewHistory),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "crewclock/v1/timesheet.proto",
}

// InvitationServiceDesc は InvitationService の ServiceDesc です。
var InvitationServiceDesc = grpc.ServiceDesc{
	ServiceName: invitationServiceName,
	HandlerType: (*InvitationServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		method(invitationServiceName, "IssueInvitation", InvitationServiceServer.IssueInvitation),
		method(invitationServiceName, "ResolveInvitation", InvitationServiceServer.ResolveInvitation),
		method(invitationServiceName, "RedeemInvitation", InvitationServiceServer.RedeemInvitation),
		method(invitationServiceName, "RevokeInvitation", InvitationServiceServer.RevokeInvitation),
		method(invitationServiceName, "ListInvitations", InvitationServiceServer.ListInvitations),
		method(invitationServiceName, "GetInvitation", InvitationServiceServer.GetInvitation),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "crewclock/v1/invitation.proto",
}

// ActivityServiceDesc は ActivityService の ServiceDesc です。
var ActivityServiceDesc = grpc.ServiceDesc{
	ServiceName: activityServiceName,
	HandlerType: (*ActivityServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		method(activityServiceName, "ListRecentActivities", ActivityServiceServer.ListRecentActivities),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "crewclock/v1/activity.proto",
}

// RegisterCrewServiceServer は CrewService を登録します。
func RegisterCrewServiceServer(s grpc.ServiceRegistrar, srv CrewServiceServer) {
	s.RegisterService(&CrewServiceDesc, srv)
}

// RegisterTimeClockServiceServer は TimeClockService を登録します。
func RegisterTimeClockServiceServer(s grpc.ServiceRegistrar, srv TimeClockServiceServer) {
	s.RegisterService(&TimeClockServiceDesc, srv)
}

// RegisterTimesheetServiceServer は TimesheetService を登録します。
func RegisterTimesheetServiceServer(s grpc.ServiceRegistrar, srv TimesheetServiceServer) {
	s.RegisterService(&TimesheetServiceDesc, srv)
}

// RegisterInvitationServiceServer は InvitationService を登録します。
func RegisterInvitationServiceServer(s grpc.ServiceRegistrar, srv InvitationServiceServer) {
	s.RegisterService(&InvitationServiceDesc, srv)
}

// RegisterActivityServiceServer は ActivityService を登録します。
func RegisterActivityServiceServer(s grpc.ServiceRegistrar, srv ActivityServiceServer) {
	s.RegisterService(&ActivityServiceDesc, srv)
}
