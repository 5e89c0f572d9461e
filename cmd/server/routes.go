package main

import (
	"github.com/gin-gonic/gin"
	"teamsync.backend/internal/interfaces/http/handlers"
)

type routeDeps struct {
	teamHandler        *handlers.TeamHandler
	participantHandler *handlers.ParticipantHandler
	organizerHandler   *handlers.OrganizerHandler
	assistantHandler   *handlers.AssistantHandler
	authMiddleware     gin.HandlerFunc
	organizerOnly      gin.HandlerFunc
	idempotency        gin.HandlerFunc
}

func passthrough(c *gin.Context) { c.Next() }

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	idem := d.idempotency
	if idem == nil {
		idem = passthrough
	}

	v1 := r.Group("/api/v1")
	v1.Use(d.authMiddleware)
	{
		v1.GET("/me", d.participantHandler.GetMe)

		// Team routes
		teams := v1.Group("/teams")
		{
			teams.GET("", d.teamHandler.ListTeams)
			teams.POST("", idem, d.teamHandler.CreateTeam)
			teams.GET("/:id", d.teamHandler.GetTeam)
			teams.PUT("/:id", d.teamHandler.UpdateTeam)
			teams.POST("/:id/invite", idem, d.teamHandler.SendInvite)
			teams.POST("/:id/accept/:inviteId", idem, d.teamHandler.AcceptInvite)
			teams.POST("/:id/decline/:inviteId", idem, d.teamHandler.DeclineInvite)
			teams.POST("/:id/join-request", idem, d.teamHandler.SendJoinRequest)
			teams.POST("/:id/join-request/:requestId/approve", idem, d.teamHandler.ApproveJoinRequest)
			teams.POST("/:id/join-request/:requestId/reject", idem, d.teamHandler.RejectJoinRequest)
			teams.POST("/:id/leave", idem, d.teamHandler.LeaveTeam)
			teams.GET("/:id/balance-score", d.teamHandler.GetBalanceScore)
			teams.GET("/:id/card", d.teamHandler.GetTeamCard)
			teams.PATCH("/:id/meeting-link", d.teamHandler.UpdateMeetingLink)
		}

		// Participant routes
		participants := v1.Group("/participants")
		{
			participants.GET("", d.participantHandler.Discover)
			participants.GET("/me/invites", d.participantHandler.MyInvites)
			participants.PUT("/profile", d.participantHandler.UpdateProfile)
			participants.PATCH("/availability", d.participantHandler.SetAvailability)
			participants.GET("/:id", d.participantHandler.GetParticipant)
			participants.GET("/:id/skill-gap/:teamId", d.participantHandler.SkillGap)
		}

		// Organizer routes
		organizer := v1.Group("/organizer")
		organizer.Use(d.organizerOnly)
		{
			organizer.GET("/dashboard", d.organizerHandler.Dashboard)
			organizer.GET("/unassigned", d.organizerHandler.Unassigned)
			organizer.GET("/skill-distribution", d.organizerHandler.SkillDistribution)
			organizer.GET("/team-analytics", d.organizerHandler.TeamAnalytics)
			organizer.POST("/automation/run", d.organizerHandler.RunAutomation)
		}

		// Assistant routes
		ai := v1.Group("/ai")
		{
			ai.GET("/health", d.assistantHandler.Health)
			ai.POST("/improve-bio", d.assistantHandler.ImproveBio)
			ai.POST("/suggest-skills", d.assistantHandler.SuggestSkills)
			ai.GET("/compatibility/:teamId", d.assistantHandler.Compatibility)
			ai.POST("/generate-team-description", d.assistantHandler.GenerateTeamDescription)
			ai.GET("/recommend-teams", d.assistantHandler.RecommendTeams)
		}
	}
}
