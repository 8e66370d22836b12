package main

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/iho/ledgersync/internal/adapter/http/dto"
	"github.com/iho/ledgersync/internal/infrastructure/auth"
)

func newMappingCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mapping",
		Short: "Inspect local to ERP identifier mappings",
	}

	var (
		localType string
		localID   int64
	)
	resolveCmd := &cobra.Command{
		Use:   "resolve",
		Short: "Show the ERP record of a local entity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var rec dto.MappingResponse
			query := url.Values{
				"local_type": {localType},
				"local_id":   {strconv.FormatInt(localID, 10)},
			}
			if err := newAPIClient(opts).get(cmd.Context(), "/api/v1/sync/mappings", query, &rec); err != nil {
				return err
			}
			printMappings(cmd.OutOrStdout(), []dto.MappingResponse{rec})
			return nil
		},
	}
	resolveCmd.Flags().StringVar(&localType, "type", "", "Local entity type, e.g. Account")
	resolveCmd.Flags().Int64Var(&localID, "id", 0, "Local entity id")
	_ = resolveCmd.MarkFlagRequired("type")
	_ = resolveCmd.MarkFlagRequired("id")

	var (
		model      string
		externalID int64
	)
	reverseCmd := &cobra.Command{
		Use:   "reverse",
		Short: "Show the local id of an ERP record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var res dto.ReverseLookupResponse
			query := url.Values{
				"external_type": {model},
				"external_id":   {strconv.FormatInt(externalID, 10)},
			}
			if err := newAPIClient(opts).get(cmd.Context(), "/api/v1/sync/mappings", query, &res); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d -> local %d\n", res.ExternalType, res.ExternalID, res.LocalID)
			return nil
		},
	}
	reverseCmd.Flags().StringVar(&model, "model", "", "ERP model, e.g. account.account")
	reverseCmd.Flags().Int64Var(&externalID, "id", 0, "ERP record id")
	_ = reverseCmd.MarkFlagRequired("model")
	_ = reverseCmd.MarkFlagRequired("id")

	var (
		listType      string
		limit, offset int
	)
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the mappings of one local entity type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var page dto.ListResponse[dto.MappingResponse]
			query := url.Values{
				"local_type": {listType},
				"limit":      {strconv.Itoa(limit)},
				"offset":     {strconv.Itoa(offset)},
			}
			if err := newAPIClient(opts).get(cmd.Context(), "/api/v1/sync/mappings", query, &page); err != nil {
				return err
			}
			printMappings(cmd.OutOrStdout(), page.Items)
			return nil
		},
	}
	listCmd.Flags().StringVar(&listType, "type", "", "Local entity type")
	listCmd.Flags().IntVar(&limit, "limit", 20, "Page size")
	listCmd.Flags().IntVar(&offset, "offset", 0, "Page offset")
	_ = listCmd.MarkFlagRequired("type")

	var tenantID, companyID int64
	putCompanyCmd := &cobra.Command{
		Use:   "put-company",
		Short: "Record the ERP company of a tenant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var rec dto.MappingResponse
			body := dto.RegisterCompanyRequest{TenantID: tenantID, CompanyID: companyID}
			if err := newAPIClient(opts).post(cmd.Context(), "/api/v1/sync/mappings/companies", body, &rec); err != nil {
				return err
			}
			printMappings(cmd.OutOrStdout(), []dto.MappingResponse{rec})
			return nil
		},
	}
	putCompanyCmd.Flags().Int64Var(&tenantID, "tenant-id", 0, "Local tenant id")
	putCompanyCmd.Flags().Int64Var(&companyID, "company-id", 0, "ERP res.company id")
	_ = putCompanyCmd.MarkFlagRequired("tenant-id")
	_ = putCompanyCmd.MarkFlagRequired("company-id")

	cmd.AddCommand(resolveCmd, reverseCmd, listCmd, putCompanyCmd)
	return cmd
}

func newTasksCmd(opts *options) *cobra.Command {
	var (
		entityType    string
		entityID      int64
		limit, offset int
	)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Show the sync task history of an entity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var page dto.ListResponse[dto.TaskResponse]
			query := url.Values{
				"entity_type": {entityType},
				"entity_id":   {strconv.FormatInt(entityID, 10)},
				"limit":       {strconv.Itoa(limit)},
				"offset":      {strconv.Itoa(offset)},
			}
			if err := newAPIClient(opts).get(cmd.Context(), "/api/v1/sync/tasks", query, &page); err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SEQ\tOPERATION\tSTATUS\tOUTCOME\tATTEMPTS\tCREATED\tDETAIL")
			for _, t := range page.Items {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%s\t%s\n",
					t.Seq, t.Operation, t.Status, t.Outcome, t.Attempts, t.CreatedAt.Format(time.RFC3339), t.Detail)
			}
			return w.Flush()
		},
	}
	listCmd.Flags().StringVar(&entityType, "type", "", "Local entity type")
	listCmd.Flags().Int64Var(&entityID, "id", 0, "Local entity id")
	listCmd.Flags().IntVar(&limit, "limit", 20, "Page size")
	listCmd.Flags().IntVar(&offset, "offset", 0, "Page offset")
	_ = listCmd.MarkFlagRequired("type")
	_ = listCmd.MarkFlagRequired("id")

	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Inspect sync tasks",
	}
	cmd.AddCommand(listCmd)
	return cmd
}

func newTokenCmd() *cobra.Command {
	var (
		secret   string
		subject  string
		tenantID int64
		ttl      time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for a tenant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return errors.New("a signing secret is required (--secret or JWT_SECRET)")
			}
			token, err := auth.NewJWTManager(secret, ttl).Generate(subject, tenantID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&secret, "secret", os.Getenv("JWT_SECRET"), "HMAC signing secret")
	cmd.Flags().StringVar(&subject, "subject", "cli", "Token subject")
	cmd.Flags().Int64Var(&tenantID, "tenant-id", 0, "Tenant the token acts for")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("tenant-id")

	return cmd
}

func printMappings(out io.Writer, recs []dto.MappingResponse) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "LOCAL TYPE\tLOCAL ID\tERP MODEL\tERP ID")
	for _, r := range recs {
		fmt.Fprintf(w, "%s\t%d\t%s\t%d\n", r.LocalType, r.LocalID, r.ExternalType, r.ExternalID)
	}
	_ = w.Flush()
}
