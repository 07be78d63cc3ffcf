package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"slice-align/internal/diag"
	"slice-align/internal/landmark"
	"slice-align/internal/ransac"
	"slice-align/internal/transform"
)

func newFitCmd(root *Root) *cobra.Command {
	var (
		pairsPath string
		outPath   string
		plotPath  string

		model      string
		threshold  float64
		minInliers int
		confidence float64
		maxIter    int
		minIter    int
		seed       int64
		workers    int
	)

	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Fit a transform to a landmark file with outlier rejection",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := root.Cfg
			if cmd.Flags().Changed("model") {
				cfg.Model = model
			}
			if cmd.Flags().Changed("threshold") {
				cfg.Threshold = threshold
			}
			if cmd.Flags().Changed("min-inliers") {
				cfg.MinInliers = minInliers
			}
			if cmd.Flags().Changed("confidence") {
				cfg.Confidence = confidence
			}
			if cmd.Flags().Changed("max-iterations") {
				cfg.MaxIterations = maxIter
			}
			if cmd.Flags().Changed("min-iterations") {
				cfg.MinIterations = minIter
			}
			if cmd.Flags().Changed("seed") {
				cfg.Seed = seed
			}
			if cmd.Flags().Changed("workers") {
				cfg.Workers = workers
			}

			kind, err := cfg.Kind()
			if err != nil {
				return err
			}
			if kind == transform.MovingLeastSquares {
				return fmt.Errorf("mls is an interpolating model; fit a global model here and use `apply --mls`")
			}

			matches, err := landmark.Load(pairsPath)
			if err != nil {
				return err
			}
			root.Log.Info("loaded landmarks", "path", pairsPath, "pairs", len(matches))

			result, err := ransac.Run(cmd.Context(), matches, cfg.Params(kind))
			if err != nil {
				if errors.Is(err, ransac.ErrNotEnoughInliers) {
					root.Log.Warn("consensus search failed; consider raising --threshold or lowering --min-inliers")
				}
				return err
			}

			summary := diag.Summarize(result.Inliers, result.Model)
			root.Log.Info("fit complete",
				"model", kind.String(),
				"iterations", result.Iterations,
				"inliers", len(result.Inliers),
				"matches", len(matches),
				"rms", summary.RMS,
				"max_residual", summary.Max,
			)
			fmt.Printf("%s: %d/%d inliers, cost %.4f\n",
				kind, len(result.Inliers), len(matches), result.Cost)

			if outPath != "" {
				if err := landmark.SaveTransform(outPath, kind, result.Model); err != nil {
					return err
				}
				root.Log.Info("wrote transform", "path", outPath)
			}
			if plotPath != "" {
				res := diag.Residuals(matches, result.Model)
				if err := diag.SaveResidualPlot(plotPath, res, cfg.Threshold); err != nil {
					return err
				}
				root.Log.Info("wrote residual plot", "path", plotPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&pairsPath, "pairs", "p", "", "landmark JSON file (required)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write fitted transform JSON here")
	cmd.Flags().StringVar(&plotPath, "plot", "", "write residual plot here (png/svg/pdf)")
	cmd.Flags().StringVarP(&model, "model", "m", "affine", "model: translation, rigid, similarity, affine")
	cmd.Flags().Float64VarP(&threshold, "threshold", "t", 2.0, "inlier residual threshold tau")
	cmd.Flags().IntVar(&minInliers, "min-inliers", 0, "minimum consensus size (0 = model minimum)")
	cmd.Flags().Float64Var(&confidence, "confidence", 0.995, "target confidence for the adaptive iteration bound")
	cmd.Flags().IntVar(&maxIter, "max-iterations", 1000, "iteration cap")
	cmd.Flags().IntVar(&minIter, "min-iterations", 10, "iteration floor")
	cmd.Flags().Int64Var(&seed, "seed", 1, "random seed")
	cmd.Flags().IntVar(&workers, "workers", 1, "concurrent trial workers")
	cmd.MarkFlagRequired("pairs")

	return cmd
}
