package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"slice-align/internal/diag"
	"slice-align/internal/landmark"
	"slice-align/internal/transform"
)

func newCheckCmd(root *Root) *cobra.Command {
	var (
		pairsPath     string
		transformPath string
		plotPath      string
		threshold     float64
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report residuals of a saved transform against a landmark file",
		RunE: func(cmd *cobra.Command, args []string) error {
			matches, err := landmark.Load(pairsPath)
			if err != nil {
				return err
			}
			kind, t, err := landmark.LoadTransform(transformPath)
			if err != nil {
				return err
			}

			model := &transform.AffineModel{}
			model.SetAffine(t)

			s := diag.Summarize(matches, model)
			fmt.Printf("%s over %d pairs: mean %.4f  rms %.4f  p95 %.4f  max %.4f\n",
				kind, s.Count, s.Mean, s.RMS, s.P95, s.Max)

			inliers := 0
			for _, r := range diag.Residuals(matches, model) {
				if r <= threshold {
					inliers++
				}
			}
			fmt.Printf("%d/%d pairs within threshold %.3f\n", inliers, s.Count, threshold)

			if plotPath != "" {
				res := diag.Residuals(matches, model)
				if err := diag.SaveResidualPlot(plotPath, res, threshold); err != nil {
					return err
				}
				root.Log.Info("wrote residual plot", "path", plotPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&pairsPath, "pairs", "p", "", "landmark JSON file (required)")
	cmd.Flags().StringVar(&transformPath, "transform", "", "fitted transform JSON (required)")
	cmd.Flags().StringVar(&plotPath, "plot", "", "write residual plot here")
	cmd.Flags().Float64VarP(&threshold, "threshold", "t", 2.0, "inlier residual threshold")
	cmd.MarkFlagRequired("pairs")
	cmd.MarkFlagRequired("transform")

	return cmd
}
