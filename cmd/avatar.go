//go:build unix

package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"

	"github.com/jirav/jirav/internal/apiclient"
	"github.com/jirav/jirav/internal/bridge/jira"
	"github.com/jirav/jirav/internal/daemon"
	"github.com/spf13/cobra"
)

var avatarCmd = &cobra.Command{
	Use:   "avatar",
	Short: "Manage Jira avatars",
	Long: `List, upload and crop Jira avatars.

The Jira connection can be configured per project in .jirav/jira.json:
{
  "base_url": "https://your-domain.atlassian.net",
  "email": "your-email@example.com",
  "api_token": "your-api-token"
}

or via the JIRAV_BASE_URL, JIRAV_EMAIL and JIRAV_API_TOKEN environment
variables.`,
}

var avatarListCmd = &cobra.Command{
	Use:   "list",
	Short: "List system avatars",
	Long:  "Fetch the built-in system avatars for a namespace (project or user).",
	RunE:  runAvatarList,
}

var avatarUploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a temporary avatar",
	Long: `Upload an image file as a temporary avatar.

Jira answers with a suggested crop window, which is recorded locally so a
later 'jirav avatar crop' can confirm it. Note that Jira's temporary avatar
endpoints are known to misbehave relative to their documentation.`,
	Args: cobra.ExactArgs(1),
	RunE: runAvatarUpload,
}

var avatarCropCmd = &cobra.Command{
	Use:   "crop",
	Short: "Crop a pending temporary avatar",
	Long: `Confirm the crop window for a previously uploaded temporary avatar.

Without flags, the crop window Jira suggested at upload time is used for the
most recent pending upload of the selected type. Pass --width/--offset-x/
--offset-y to override it, or --id to select a specific pending upload.`,
	RunE: runAvatarCrop,
}

var avatarPendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List uploads awaiting a crop",
	RunE:  runAvatarPending,
}

var (
	avatarType        string
	listJSONOutput    bool
	pendingJSONOutput bool

	cropUploadID string
	cropWidth    int
	cropOffsetX  int
	cropOffsetY  int
)

func init() {
	rootCmd.AddCommand(avatarCmd)
	avatarCmd.AddCommand(avatarListCmd)
	avatarCmd.AddCommand(avatarUploadCmd)
	avatarCmd.AddCommand(avatarCropCmd)
	avatarCmd.AddCommand(avatarPendingCmd)

	avatarCmd.PersistentFlags().StringVar(&avatarType, "type", jira.AvatarTypeProject,
		"Avatar namespace: project or user")

	avatarListCmd.Flags().BoolVar(&listJSONOutput, "json", false, "Output as JSON")
	avatarPendingCmd.Flags().BoolVar(&pendingJSONOutput, "json", false, "Output as JSON")

	avatarCropCmd.Flags().StringVar(&cropUploadID, "id", "", "Pending upload ID (default: most recent)")
	avatarCropCmd.Flags().IntVar(&cropWidth, "width", 0, "Cropper width in pixels")
	avatarCropCmd.Flags().IntVar(&cropOffsetX, "offset-x", 0, "Cropper X offset in pixels")
	avatarCropCmd.Flags().IntVar(&cropOffsetY, "offset-y", 0, "Cropper Y offset in pixels")
}

func runAvatarList(cmd *cobra.Command, args []string) error {
	config, _, err := jira.LoadConfigFromCwd()
	if err != nil {
		return err
	}

	client := apiclient.New()

	reqBody := map[string]interface{}{
		"config":      config,
		"avatar_type": avatarType,
	}

	var result daemon.ListAvatarsResponse
	if err := client.PostJSON(cmd.Context(), "/api/avatars/list", reqBody, &result); err != nil {
		return fmt.Errorf("list request failed: %w", err)
	}

	if listJSONOutput {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result.Avatars)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tSYSTEM\tSELECTED\tURL\n")
	for _, avatar := range result.Avatars {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			avatar.ID,
			yesNo(avatar.IsSystemAvatar),
			yesNo(avatar.IsSelected),
			largestURL(avatar.URLs),
		)
	}
	w.Flush()
	fmt.Printf("\nTotal: %d %s avatars\n", len(result.Avatars), avatarType)

	return nil
}

func runAvatarUpload(cmd *cobra.Command, args []string) error {
	config, _, err := jira.LoadConfigFromCwd()
	if err != nil {
		return err
	}

	// Resolve to an absolute path; the daemon reads the file itself
	filePath, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("failed to resolve path %s: %w", args[0], err)
	}

	client := apiclient.New()

	reqBody := map[string]interface{}{
		"config":      config,
		"avatar_type": avatarType,
		"file_path":   filePath,
	}

	var result daemon.UploadAvatarResponse
	if err := client.PostJSON(cmd.Context(), "/api/avatars/upload", reqBody, &result); err != nil {
		return fmt.Errorf("upload request failed: %w", err)
	}

	fmt.Printf("Avatar Upload Complete\n")
	if result.Upload != nil {
		fmt.Printf("  Upload ID: %s\n", result.Upload.ID)
		fmt.Printf("  File: %s (%d bytes)\n", result.Upload.Filename, result.Upload.Size)
		if result.Upload.Crop != nil && result.Upload.Crop.NeedsCropping {
			fmt.Printf("  Suggested crop: width=%d, x=%d, y=%d\n",
				result.Upload.Crop.CropperWidth,
				result.Upload.Crop.CropperOffsetX,
				result.Upload.Crop.CropperOffsetY)
			fmt.Printf("\nRun 'jirav avatar crop --type %s' to confirm the crop.\n", avatarType)
		}
	}

	return nil
}

func runAvatarCrop(cmd *cobra.Command, args []string) error {
	config, _, err := jira.LoadConfigFromCwd()
	if err != nil {
		return err
	}

	client := apiclient.New()

	reqBody := map[string]interface{}{
		"config":      config,
		"avatar_type": avatarType,
	}
	if cropUploadID != "" {
		reqBody["upload_id"] = cropUploadID
	}
	// An explicit crop window overrides the recorded suggestion
	if cmd.Flags().Changed("width") || cmd.Flags().Changed("offset-x") || cmd.Flags().Changed("offset-y") {
		reqBody["crop"] = &jira.CropInstructions{
			CropperWidth:   cropWidth,
			CropperOffsetX: cropOffsetX,
			CropperOffsetY: cropOffsetY,
		}
	}

	var result daemon.CropAvatarResponse
	if err := client.PostJSON(cmd.Context(), "/api/avatars/crop", reqBody, &result); err != nil {
		if apiclient.IsNotFound(err) {
			return fmt.Errorf("no pending upload to crop; run 'jirav avatar upload' first (%w)", err)
		}
		return fmt.Errorf("crop request failed: %w", err)
	}

	fmt.Printf("Avatar Crop Complete\n")
	if result.Avatar != nil {
		fmt.Printf("  Avatar ID: %s\n", result.Avatar.ID)
	}
	if result.Message != "" {
		fmt.Printf("  %s\n", result.Message)
	}

	return nil
}

func runAvatarPending(cmd *cobra.Command, args []string) error {
	client := apiclient.New()

	var result daemon.PendingUploadsResponse
	if err := client.GetJSON(cmd.Context(), "/api/avatars/pending", &result); err != nil {
		return fmt.Errorf("pending request failed: %w", err)
	}

	if pendingJSONOutput {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result.Uploads)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tTYPE\tFILE\tSIZE\tUPLOADED\n")
	for _, u := range result.Uploads {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			u.ID,
			u.AvatarType,
			u.Filename,
			u.Size,
			u.UploadedAt.Format("2006-01-02 15:04"),
		)
	}
	w.Flush()
	fmt.Printf("\nTotal: %d pending uploads\n", len(result.Uploads))

	return nil
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// largestURL picks the biggest rendition from an avatar's URL map
// (keys look like "16x16", "48x48")
func largestURL(urls map[string]string) string {
	if len(urls) == 0 {
		return ""
	}
	keys := make([]string, 0, len(urls))
	for k := range urls {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return len(keys[i]) > len(keys[j]) || (len(keys[i]) == len(keys[j]) && keys[i] > keys[j])
	})
	return urls[keys[0]]
}
