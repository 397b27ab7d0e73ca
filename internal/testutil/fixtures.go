package testutil

// RatesPage is a trimmed copy of the live rate page: both investment
// accounts, the Kijang Emas coin table and the MIGA-i tiers. The data rows of
// the investment account tables sit directly in <table>, as on the site.
const RatesPage = `<html> <head> <META http-equiv="Content-Type" content="text/html; charset=UTF-8"> <title>Gold & Silver Counter Rates | Maybank Malaysia</title> </head>
<body>
<div class="row">
<div class="col-sm-6"><p class="text-medium black">Maybank Gold Investment Account</p><div class="table-responsive"><table class="table highlight"><tr><th>Date</th><th>Selling (RM/g)</th><th>Buying (RM/g)</th></tr><td>01 Oct 2025</td><td>534.14</td><td>513.79</td></table><p class="text-small">Effective on 01 Oct 2025 01:44 PM</p></div><p class="text-medium black p-top-50">Kijang Emas Daily Prices</p><div class="table-responsive"><table class="table highlight"><tr><th>Size (oz)</th><th>Selling (RM)</th><th>Buying (RM)</th></tr><td>ONE</td><td>17,271.00</td><td>16,578.00</td></tr> <tr><td>HALF</td><td>8,798.00</td><td>8,289.00</td></tr> <tr><td>QUARTER</td><td>4,481.00</td><td>4,144.00</td></tr></table><p class="text-small">Effective on 01 Oct 2025 01:44 PM</p></div></div><div class="col-sm-6"><p class="text-medium black">Maybank Silver Investment Account</p><div class="table-responsive"><table class="table highlight"><tr><th>Date</th><th>Selling (RM/g)</th><th>Buying (RM/g)</th></tr><td>01 Oct 2025</td><td>6.62</td><td>6.10</td></table><p class="text-small">Effective on 01 Oct 2025 01:44 PM</p></div>
<p class="text-medium black p-top-50">Maybank Islamic Gold Account-i (MIGA-i) </p><div class="table-responsive"><table class="table highlight"><tr><th>Date</th><th>Selling (RM/g)</th><th>Buying (RM/g)</th></tr><tr><td>For 100 grams and above</td><td>534.13</td><td>522.06</td></tr><tr><td>For below 100 grams </td><td>535.88</td><td>521.56</td></tr></table><p class="text-small">Effective on 01 Oct 2025 09:17:39</p></div>
</div>
</div>
</body>
</html>`

// CounterTable is a generic rates table with Buy/Sell headers and one row per metal.
const CounterTable = `
<html>
<head>
<title>Gold & Silver Counter Rates | Maybank Malaysia</title>
</head>
<body>
<div class="rates-container">
    <h1>Gold & Silver Counter Rates</h1>
    <table class="rates-table">
        <thead>
            <tr>
                <th>Metal</th>
                <th>Buy (RM/g)</th>
                <th>Sell (RM/g)</th>
            </tr>
        </thead>
        <tbody>
            <tr>
                <td>Gold</td>
                <td>345.50</td>
                <td>350.75</td>
            </tr>
            <tr>
                <td>Silver</td>
                <td>4.25</td>
                <td>4.50</td>
            </tr>
        </tbody>
    </table>
</div>
</body>
</html>
`

// LabelledSpans lays prices out in spans with Buy/Sell labels and no table.
const LabelledSpans = `
<div class="rate-item">
    <span class="metal">Gold</span>
    <span class="buy">Buy: RM 345.50</span>
    <span class="sell">Sell: RM 350.75</span>
</div>
<div class="rate-item">
    <span class="metal">Silver</span>
    <span class="buy">Buy: RM 4.25</span>
    <span class="sell">Sell: RM 4.50</span>
</div>
`

// PlainText has no markup at all.
const PlainText = "Gold: 345.50 / 350.75\nSilver: 4.25 / 4.50\n"
