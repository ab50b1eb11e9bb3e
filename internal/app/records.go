package app

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/hitoshi/salesnav/internal/model"
	"github.com/hitoshi/salesnav/internal/printer"
)

// --- リード ---

func (c *cli) leadsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leads",
		Short: "List, add and update leads",
	}
	cmd.AddCommand(c.leadsListCommand(), c.leadsAddCommand(), c.leadsUpdateCommand())
	return cmd
}

func (c *cli) leadsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List leads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withRuntime(cmd, func(ctx context.Context, rt *Runtime, p *printer.Printer) error {
				view, err := rt.Controller.Reload(ctx)
				if err != nil {
					return err
				}
				return c.emit(cmd, view.Leads, func() { p.Leads(view.Leads) })
			})
		},
	}
}

func (c *cli) leadsAddCommand() *cobra.Command {
	var (
		lead        model.Lead
		appointment string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a lead",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withRuntime(cmd, func(ctx context.Context, rt *Runtime, p *printer.Printer) error {
				s := rt.Sanitizer.Sanitize
				in := lead
				in.BusinessName = s(in.BusinessName)
				in.City = s(in.City)
				in.Address = s(in.Address)
				in.Phone = s(in.Phone)
				in.DecisionMaker = s(in.DecisionMaker)
				in.BestTimeToContact = s(in.BestTimeToContact)
				in.CompetitorInfo = s(in.CompetitorInfo)
				in.MarketingStrategy = s(in.MarketingStrategy)
				in.ExtraDetails = s(in.ExtraDetails)
				in.WeekNumber = s(in.WeekNumber)
				if appointment != "" {
					t, err := parseDate(rt, appointment)
					if err != nil {
						return err
					}
					in.AppointmentDateTime = &t
				}

				created, _, err := rt.Controller.AddLead(ctx, in)
				if err != nil {
					return err
				}
				return c.emit(cmd, created, func() { p.Success("Added lead %s (%s)", created.BusinessName, created.ID) })
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&lead.BusinessName, "business", "", "Business name")
	f.StringVar(&lead.City, "city", "", "City")
	f.StringVar(&lead.Address, "address", "", "Street address")
	f.StringVar(&lead.Phone, "phone", "", "Phone number")
	f.BoolVar(&lead.StoppedBy, "stopped-by", false, "Visited in person")
	f.BoolVar(&lead.FollowedUp, "followed-up", false, "Already followed up")
	f.BoolVar(&lead.ContactedLeadership, "contacted-leadership", false, "Reached a decision maker")
	f.BoolVar(&lead.AppointmentSet, "appointment-set", false, "Appointment booked")
	f.StringVar(&appointment, "appointment", "", "Appointment date (RFC3339 or YYYY-MM-DD)")
	f.BoolVar(&lead.Converted, "converted", false, "Already converted")
	f.StringVar(&lead.DecisionMaker, "decision-maker", "", "Decision maker name")
	f.StringVar(&lead.BestTimeToContact, "best-time", "", "Best time to contact")
	f.StringVar(&lead.CompetitorInfo, "competitor", "", "Competitor information")
	f.StringVar(&lead.MarketingStrategy, "strategy", "", "Current marketing strategy")
	f.StringVar(&lead.ExtraDetails, "details", "", "Extra details")
	f.StringVar(&lead.WeekNumber, "week", "", "Prospecting week label")
	cmd.MarkFlagRequired("business")
	return cmd
}

func (c *cli) leadsUpdateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update LEAD_ID",
		Short: "Mark a lead followed up or converted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := model.LeadPatch{
				FollowedUp: boolFlag(cmd, "followed-up"),
				Converted:  boolFlag(cmd, "converted"),
			}
			if patch.IsEmpty() {
				return c.printer(cmd).Error("Nothing to update", "", []string{"Pass --followed-up or --converted"})
			}
			return c.withRuntime(cmd, func(ctx context.Context, rt *Runtime, p *printer.Printer) error {
				updated, _, err := rt.Controller.UpdateLead(ctx, args[0], patch)
				if err != nil {
					return err
				}
				return c.emit(cmd, updated, func() { p.Success("Updated lead %s", updated.BusinessName) })
			})
		},
	}
	cmd.Flags().Bool("followed-up", false, "Set the followed-up flag")
	cmd.Flags().Bool("converted", false, "Set the converted flag")
	return cmd
}

// --- 顧客 ---

func (c *cli) clientsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clients",
		Short: "List and add clients",
	}
	cmd.AddCommand(c.clientsListCommand(), c.clientsAddCommand())
	return cmd
}

func (c *cli) clientsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List clients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withRuntime(cmd, func(ctx context.Context, rt *Runtime, p *printer.Printer) error {
				view, err := rt.Controller.Reload(ctx)
				if err != nil {
					return err
				}
				return c.emit(cmd, view.Clients, func() { p.Clients(view.Clients) })
			})
		},
	}
}

func (c *cli) clientsAddCommand() *cobra.Command {
	var client model.Client
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a client from an approved onboarding",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withRuntime(cmd, func(ctx context.Context, rt *Runtime, p *printer.Printer) error {
				s := rt.Sanitizer.Sanitize
				in := client
				in.CompanyName = s(in.CompanyName)
				in.CompanyType = s(in.CompanyType)
				in.StartDate = s(in.StartDate)
				in.RecordingPerson = s(in.RecordingPerson)
				in.ExtraDetails = s(in.ExtraDetails)

				created, _, err := rt.Controller.AddClient(ctx, in)
				if err != nil {
					return err
				}
				return c.emit(cmd, created, func() { p.Success("Added client %s (%s)", created.CompanyName, created.ID) })
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&client.CompanyName, "company", "", "Company name")
	f.Float64Var(&client.PackageValue, "package-value", 0, "Monthly package value")
	f.StringVar(&client.CompanyType, "type", "", "Company type")
	f.StringVar(&client.StartDate, "start-date", "", "Service start date")
	f.Float64Var(&client.AdsSpendBudget, "ads-budget", 0, "Ads spend budget")
	f.IntVar(&client.VideosPerMonth, "videos", 0, "Videos per month")
	f.StringVar(&client.RecordingPerson, "recording-person", "", "Person on camera")
	f.BoolVar(&client.NeedVideographer, "need-videographer", false, "Needs a videographer")
	f.StringVar(&client.ExtraDetails, "details", "", "Extra details")
	cmd.MarkFlagRequired("company")
	return cmd
}

// --- イベント ---

func (c *cli) eventsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "List and add calendar events",
	}
	cmd.AddCommand(c.eventsListCommand(), c.eventsAddCommand())
	return cmd
}

func (c *cli) eventsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List calendar events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withRuntime(cmd, func(ctx context.Context, rt *Runtime, p *printer.Printer) error {
				view, err := rt.Controller.Reload(ctx)
				if err != nil {
					return err
				}
				return c.emit(cmd, view.Events, func() { p.Events(view.Events) })
			})
		},
	}
}

func (c *cli) eventsAddCommand() *cobra.Command {
	var (
		event model.Event
		date  string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a calendar event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withRuntime(cmd, func(ctx context.Context, rt *Runtime, p *printer.Printer) error {
				t, err := parseDate(rt, date)
				if err != nil {
					return err
				}
				s := rt.Sanitizer.Sanitize
				in := event
				in.Title = s(in.Title)
				in.Date = t
				in.Time = s(in.Time)
				in.Type = s(in.Type)
				in.Address = s(in.Address)
				in.Contact = s(in.Contact)
				in.Phone = s(in.Phone)

				created, _, err := rt.Controller.AddEvent(ctx, in)
				if err != nil {
					return err
				}
				return c.emit(cmd, created, func() { p.Success("Added event %s (%s)", created.Title, created.ID) })
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&event.Title, "title", "", "Event title")
	f.StringVar(&date, "date", "", "Event date (RFC3339 or YYYY-MM-DD)")
	f.StringVar(&event.Time, "time", "", "Display time, e.g. 10:00 AM")
	f.StringVar(&event.Type, "type", model.EventTypeMeeting, "Event type")
	f.StringVar(&event.Address, "address", "", "Address")
	f.StringVar(&event.Contact, "contact", "", "Contact person")
	f.StringVar(&event.Phone, "phone", "", "Contact phone")
	cmd.MarkFlagRequired("title")
	cmd.MarkFlagRequired("date")
	return cmd
}

// --- 紹介 ---

func (c *cli) referralsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "referrals",
		Short: "List, add and update candidate referrals",
	}
	cmd.AddCommand(c.referralsListCommand(), c.referralsAddCommand(), c.referralsUpdateCommand())
	return cmd
}

func (c *cli) referralsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List referrals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withRuntime(cmd, func(ctx context.Context, rt *Runtime, p *printer.Printer) error {
				view, err := rt.Controller.Reload(ctx)
				if err != nil {
					return err
				}
				return c.emit(cmd, view.Referrals, func() { p.Referrals(view.Referrals) })
			})
		},
	}
}

func (c *cli) referralsAddCommand() *cobra.Command {
	var ref model.Referral
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a candidate referral (status starts as pending)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withRuntime(cmd, func(ctx context.Context, rt *Runtime, p *printer.Printer) error {
				s := rt.Sanitizer.Sanitize
				in := ref
				in.Candidate = s(in.Candidate)
				in.Email = s(in.Email)
				in.Phone = s(in.Phone)
				in.ReferredBy = s(in.ReferredBy)
				in.Background = s(in.Background)
				in.Notes = s(in.Notes)

				created, _, err := rt.Controller.AddReferral(ctx, in)
				if err != nil {
					return err
				}
				return c.emit(cmd, created, func() { p.Success("Added referral %s (%s)", created.Candidate, created.ID) })
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&ref.Candidate, "candidate", "", "Candidate name")
	f.StringVar(&ref.Email, "email", "", "Candidate email")
	f.StringVar(&ref.Phone, "phone", "", "Candidate phone")
	f.StringVar(&ref.ReferredBy, "referred-by", "", "Who referred the candidate")
	f.StringVar(&ref.Background, "background", "", "Candidate background")
	f.StringVar(&ref.Notes, "notes", "", "Notes")
	cmd.MarkFlagRequired("candidate")
	return cmd
}

func (c *cli) referralsUpdateCommand() *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "update REFERRAL_ID",
		Short: "Change a referral's status or reward-paid flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := model.ReferralPatch{RewardPaid: boolFlag(cmd, "reward-paid")}
			if cmd.Flags().Changed("status") {
				st := model.ReferralStatus(status)
				patch.Status = &st
			}
			if patch.IsEmpty() {
				return c.printer(cmd).Error("Nothing to update", "", []string{"Pass --status or --reward-paid"})
			}
			return c.withRuntime(cmd, func(ctx context.Context, rt *Runtime, p *printer.Printer) error {
				updated, _, err := rt.Controller.UpdateReferral(ctx, args[0], patch)
				if err != nil {
					return err
				}
				return c.emit(cmd, updated, func() {
					p.Success("Referral %s is now %s", updated.Candidate, updated.Status)
				})
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", `Status: pending, Applied, Interviewing, Hired or "Contract Signed"`)
	cmd.Flags().Bool("reward-paid", false, "Set the reward-paid flag")
	return cmd
}
